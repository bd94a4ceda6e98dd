package system

import (
	"log"

	"github.com/Kuewon/Cliunt-sub000/component"
	"github.com/Kuewon/Cliunt-sub000/ecs"
	"github.com/Kuewon/Cliunt-sub000/save"
)

const (
	keyGold     = "wallet.gold"
	keyDiamonds = "wallet.diamonds"
	keyStage    = "progress.stage"
)

// Wallet holds the currencies earned from kills and stage clears.
type Wallet struct {
	store    save.Store
	bus      *ecs.Bus
	gold     int
	diamonds int
}

// NewWallet loads saved balances and starts listening for rewards.
func NewWallet(store save.Store, bus *ecs.Bus) *Wallet {
	wl := &Wallet{
		store:    store,
		bus:      bus,
		gold:     save.LoadInt(store, keyGold, 0),
		diamonds: save.LoadInt(store, keyDiamonds, 0),
	}
	bus.Subscribe(EventActorDied, func(evt ecs.Event) {
		if d, ok := evt.Data.(ActorDied); ok && d.Faction == component.FactionEnemy && d.Reward > 0 {
			wl.Add(Gold, d.Reward)
		}
	})
	bus.Subscribe(EventStageCleared, func(evt ecs.Event) {
		if c, ok := evt.Data.(StageCleared); ok && c.Reward > 0 {
			wl.Add(Diamonds, c.Reward)
		}
	})
	return wl
}

func (wl *Wallet) Gold() int     { return wl.gold }
func (wl *Wallet) Diamonds() int { return wl.diamonds }

// Add credits amount of c, persists the balance and publishes the grant.
func (wl *Wallet) Add(c Currency, amount int) {
	if amount <= 0 {
		return
	}
	var total int
	var key string
	switch c {
	case Gold:
		wl.gold += amount
		total, key = wl.gold, keyGold
	case Diamonds:
		wl.diamonds += amount
		total, key = wl.diamonds, keyDiamonds
	default:
		log.Printf("wallet: unknown currency %q", c)
		return
	}
	if err := save.SaveInt(wl.store, key, total); err != nil {
		log.Printf("wallet: %v", err)
	}
	wl.bus.Publish(ecs.Event{Type: EventRewardGranted, Data: RewardGranted{Currency: c, Amount: amount, Total: total}})
}
