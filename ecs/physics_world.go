package ecs

import (
	"sort"

	"github.com/jakecoffman/cp"
)

// Category is a collision category bit used to filter spatial queries.
type Category uint

const (
	CategoryPlayer Category = 1 << iota
	CategoryEnemy
)

// queryEpsilon keeps shapes exactly at the requested distance in range.
const queryEpsilon = 1e-9

// Hit is one result of a spatial query.
type Hit struct {
	Entity   Entity
	Distance float64
}

type physicsBody struct {
	body  *cp.Body
	shape *cp.Shape
}

// PhysicsWorld owns the Chipmunk space used for proximity queries. Bodies
// are kinematic circles; nothing here is simulated, positions are written by
// gameplay systems.
type PhysicsWorld struct {
	space  *cp.Space
	bodies map[Entity]physicsBody
}

// NewPhysicsWorld creates an empty space.
func NewPhysicsWorld() *PhysicsWorld {
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{})
	return &PhysicsWorld{
		space:  space,
		bodies: make(map[Entity]physicsBody),
	}
}

// Add registers a circular body for e. An existing body is replaced.
func (pw *PhysicsWorld) Add(e Entity, x, y, radius float64, category Category) {
	if pw == nil || pw.space == nil || !e.Valid() {
		return
	}
	pw.Remove(e)
	if radius < 0 {
		radius = 0
	}

	body := cp.NewKinematicBody()
	body.SetPosition(cp.Vector{X: x, Y: y})
	shape := cp.NewCircle(body, radius, cp.Vector{})
	shape.SetSensor(true)
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, uint(category), cp.ALL_CATEGORIES))
	shape.UserData = e

	pw.space.AddBody(body)
	pw.space.AddShape(shape)
	shape.CacheBB()
	pw.bodies[e] = physicsBody{body: body, shape: shape}
}

// Move repositions e's body.
func (pw *PhysicsWorld) Move(e Entity, x, y float64) {
	if pw == nil {
		return
	}
	pb, ok := pw.bodies[e]
	if !ok {
		return
	}
	pb.body.SetPosition(cp.Vector{X: x, Y: y})
	// kinematic bodies are never stepped, so the shape cache is refreshed here
	pb.shape.CacheBB()
}

// Position returns e's body position.
func (pw *PhysicsWorld) Position(e Entity) (float64, float64, bool) {
	if pw == nil {
		return 0, 0, false
	}
	pb, ok := pw.bodies[e]
	if !ok {
		return 0, 0, false
	}
	p := pb.body.Position()
	return p.X, p.Y, true
}

// Remove drops e's body. Unknown entities are ignored.
func (pw *PhysicsWorld) Remove(e Entity) {
	if pw == nil {
		return
	}
	pb, ok := pw.bodies[e]
	if !ok {
		return
	}
	pw.space.RemoveShape(pb.shape)
	pw.space.RemoveBody(pb.body)
	delete(pw.bodies, e)
}

// Len returns the number of registered bodies.
func (pw *PhysicsWorld) Len() int {
	if pw == nil {
		return 0
	}
	return len(pw.bodies)
}

// QueryRadius returns every body in mask whose surface lies within radius of
// (x, y), ordered by distance then entity.
func (pw *PhysicsWorld) QueryRadius(x, y, radius float64, mask Category) []Hit {
	if pw == nil || pw.space == nil || radius < 0 {
		return nil
	}
	var hits []Hit
	p := cp.Vector{X: x, Y: y}
	// the space is never stepped, so its spatial index holds stale bounds;
	// walk the shapes and test each circle directly
	pw.space.EachShape(func(shape *cp.Shape) {
		e, ok := shape.UserData.(Entity)
		if !ok || Category(shape.Filter.Categories)&mask == 0 {
			return
		}
		// surface distance, negative when p is inside the circle
		info := shape.PointQuery(p)
		if info.Distance > radius+queryEpsilon {
			return
		}
		hits = append(hits, Hit{Entity: e, Distance: info.Distance})
	})

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].Entity < hits[j].Entity
	})
	return hits
}

// Nearest returns the closest body in mask within radius of (x, y).
func (pw *PhysicsWorld) Nearest(x, y, radius float64, mask Category) (Hit, bool) {
	hits := pw.QueryRadius(x, y, radius, mask)
	if len(hits) == 0 {
		return Hit{}, false
	}
	return hits[0], true
}
