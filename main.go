package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	duration := flag.Float64("duration", 120, "simulated seconds to run, 0 runs until every wave is cleared")
	realtime := flag.Bool("realtime", false, "pace ticks to the wall clock")
	savePath := flag.String("save", "", "save file (empty keeps progress in memory)")
	seed := flag.Int64("seed", 0, "random seed (0 uses the stage seed)")
	script := flag.String("script", "autoplay.tengo", "autoplay script under prefabs/scripts, empty disables autoplay")
	watch := flag.Bool("watch", false, "hot reload tables and scripts from prefabs/")
	tablesDir := flag.String("tables", "", "directory of .yaml/.csv sheets loaded over the bundled tables")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	game, err := NewGame(Config{
		Duration:  *duration,
		Realtime:  *realtime,
		SavePath:  *savePath,
		Seed:      *seed,
		Script:    *script,
		Watch:     *watch,
		TablesDir: *tablesDir,
	})
	if err != nil {
		log.Fatal(err)
	}

	if err := game.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
