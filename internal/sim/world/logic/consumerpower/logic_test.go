package consumerpower

import "testing"

type fakeEnv struct {
	blocks map[Pos]string
	power  map[Pos]int
	on     map[Pos]bool
}

func (e fakeEnv) Role(p Pos) string   { return e.blocks[p] }
func (e fakeEnv) WirePower(p Pos) int { return e.power[p] }
func (e fakeEnv) SourceOn(p Pos) bool { return e.on[p] }

func TestConveyorEnabled(t *testing.T) {
	belt := Pos{X: 0, Y: 0, Z: 0}
	east := Pos{X: 1, Y: 0, Z: 0}

	free := fakeEnv{blocks: map[Pos]string{}}
	if !ConveyorEnabled(free, belt, 15) {
		t.Fatalf("belt without inputs should run")
	}

	dead := fakeEnv{blocks: map[Pos]string{east: "WIRE"}, power: map[Pos]int{east: 0}}
	if ConveyorEnabled(dead, belt, 15) {
		t.Fatalf("belt next to an unpowered wire should stop")
	}

	live := fakeEnv{blocks: map[Pos]string{east: "WIRE"}, power: map[Pos]int{east: 3}}
	if !ConveyorEnabled(live, belt, 15) {
		t.Fatalf("belt next to a powered wire should run")
	}

	sw := fakeEnv{blocks: map[Pos]string{east: "SWITCH"}, on: map[Pos]bool{}}
	if ConveyorEnabled(sw, belt, 15) {
		t.Fatalf("belt next to an off switch should stop")
	}
	sw.on[east] = true
	if !ConveyorEnabled(sw, belt, 15) {
		t.Fatalf("belt next to an on switch should run")
	}
}

func TestLampLit(t *testing.T) {
	lamp := Pos{X: 5, Y: 1, Z: 5}
	below := Pos{X: 5, Y: 0, Z: 5}
	env := fakeEnv{blocks: map[Pos]string{below: "WIRE"}, power: map[Pos]int{below: 1}}
	if !LampLit(env, lamp, 15) {
		t.Fatalf("lamp above powered wire should be lit")
	}
	env.power[below] = 0
	if LampLit(env, lamp, 15) {
		t.Fatalf("lamp above dead wire should be dark")
	}
	if LampLit(fakeEnv{}, lamp, 15) {
		t.Fatalf("lamp with no input should be dark")
	}
}
