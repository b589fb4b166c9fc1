package game

import (
	"math"
	"math/rand"
	"strconv"
	"sync"
	"time"
)

// Name is the game_name stored with every score.
const Name = "sunshine-hero"

const (
	Duration     = 60 // seconds
	BoardWidth   = 800
	BoardHeight  = 600
	PlayerSize   = 40
	ItemSize     = 30
	ItemCount    = 15
	MoveDistance = 20

	HealthyReward    = 10
	UnhealthyPenalty = 5

	healthyChance = 0.7
	maxEvents     = 50
)

// Kind tells healthy items from unhealthy ones.
type Kind string

const (
	Healthy   Kind = "healthy"
	Unhealthy Kind = "unhealthy"
)

var (
	healthyEmoji   = []string{"🍎", "💧", "🌞", "🌿", "🥕", "🥬", "🫐", "🍊"}
	unhealthyEmoji = []string{"☁️", "🍔", "🚬", "😢"}

	encouragingMessages = []string{
		"You're amazing!",
		"Healing power activated!",
		"You're making healthy choices!",
		"Fantastic work!",
		"Keep going, sunshine hero!",
		"Wonderful job!",
		"You're spreading wellness!",
		"Brilliant move!",
	}
)

const unhealthyMessage = "Oops! Try to avoid unhealthy choices."

// Point is a position on the board, top-left origin.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Item is a collectible on the board.
type Item struct {
	ID        string `json:"id"`
	Kind      Kind   `json:"type"`
	Emoji     string `json:"emoji"`
	Position  Point  `json:"position"`
	Collected bool   `json:"collected"`
}

// State is a snapshot of a game.
type State struct {
	Score         int    `json:"score"`
	TimeRemaining int    `json:"timeRemaining"`
	Player        Point  `json:"playerPosition"`
	Items         []Item `json:"items"`
	Playing       bool   `json:"isPlaying"`
	Over          bool   `json:"gameOver"`
	HighScore     int    `json:"highScore"`
}

// EventKind names what happened during a tick.
type EventKind string

const (
	EventCollected EventKind = "collected"
	EventGameOver  EventKind = "game_over"
)

// Event is reported to the page so it can announce and speak it.
type Event struct {
	Kind         EventKind `json:"kind"`
	Item         *Item     `json:"item,omitempty"`
	Score        int       `json:"score"`
	Message      string    `json:"message"`
	NewHighScore bool      `json:"newHighScore,omitempty"`
}

// Game is one visitor's Sunshine Hero session. It is safe for concurrent
// use by the tick runner and request handlers.
type Game struct {
	mu     sync.Mutex
	rng    *rand.Rand
	state  State
	nextID int
	events []Event
	onOver func(score int)
}

// New returns a game ready to start. onOver, if set, is called once per
// finished game with the final score and must not block.
func New(rng *rand.Rand, onOver func(score int)) *Game {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	g := &Game{rng: rng, onOver: onOver}
	g.Reset()
	return g
}

// Reset lays out a fresh board. The high score survives.
func (g *Game) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	items := make([]Item, ItemCount)
	for i := range items {
		items[i] = g.randomItem()
	}
	g.state = State{
		Score:         0,
		TimeRemaining: Duration,
		Player:        Point{X: BoardWidth / 2, Y: BoardHeight / 2},
		Items:         items,
		HighScore:     g.state.HighScore,
	}
	g.events = nil
}

func (g *Game) randomItem() Item {
	g.nextID++
	kind, pool := Unhealthy, unhealthyEmoji
	if g.rng.Float64() < healthyChance {
		kind, pool = Healthy, healthyEmoji
	}
	return Item{
		ID:    "item-" + strconv.Itoa(g.nextID),
		Kind:  kind,
		Emoji: pool[g.rng.Intn(len(pool))],
		Position: Point{
			X: g.rng.Float64() * (BoardWidth - ItemSize),
			Y: g.rng.Float64() * (BoardHeight - ItemSize),
		},
	}
}

// Start begins play. A finished game is reset first.
func (g *Game) Start() {
	if g.Snapshot().Over {
		g.Reset()
	}
	g.mu.Lock()
	g.state.Playing = true
	g.mu.Unlock()
}

// TogglePause pauses or resumes a running game and reports whether it is
// now playing.
func (g *Game) TogglePause() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state.Over {
		return false
	}
	g.state.Playing = !g.state.Playing
	return g.state.Playing
}

// Move steps the player for an arrow or WASD key. Other keys and moves
// while not playing are ignored.
func (g *Game) Move(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.state.Playing {
		return false
	}

	p := g.state.Player
	switch key {
	case "ArrowLeft", "a", "A":
		p.X = math.Max(0, p.X-MoveDistance)
	case "ArrowRight", "d", "D":
		p.X = math.Min(BoardWidth-PlayerSize, p.X+MoveDistance)
	case "ArrowUp", "w", "W":
		p.Y = math.Max(0, p.Y-MoveDistance)
	case "ArrowDown", "s", "S":
		p.Y = math.Min(BoardHeight-PlayerSize, p.Y+MoveDistance)
	default:
		return false
	}
	g.state.Player = p
	return true
}

// MoveTo centres the player on a board coordinate, clamped to the board.
func (g *Game) MoveTo(x, y float64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.state.Playing {
		return false
	}
	g.state.Player = Point{
		X: clamp(x-PlayerSize/2, 0, BoardWidth-PlayerSize),
		Y: clamp(y-PlayerSize/2, 0, BoardHeight-PlayerSize),
	}
	return true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Tick advances the game by one second: items collected on the previous
// tick respawn, collisions are scored and the clock runs down. It returns
// the events produced by this tick.
func (g *Game) Tick() []Event {
	g.mu.Lock()
	if !g.state.Playing {
		g.mu.Unlock()
		return nil
	}

	for i, it := range g.state.Items {
		if it.Collected {
			g.state.Items[i] = g.randomItem()
		}
	}

	var events []Event
	for i := range g.state.Items {
		it := &g.state.Items[i]
		if it.Collected || distance(g.state.Player, it.Position) >= PlayerSize {
			continue
		}
		it.Collected = true
		msg := unhealthyMessage
		if it.Kind == Healthy {
			g.state.Score += HealthyReward
			msg = encouragingMessages[g.rng.Intn(len(encouragingMessages))]
		} else {
			g.state.Score = max(0, g.state.Score-UnhealthyPenalty)
		}
		collected := *it
		events = append(events, Event{Kind: EventCollected, Item: &collected, Score: g.state.Score, Message: msg})
	}

	var finalScore int
	over := false
	g.state.TimeRemaining--
	if g.state.TimeRemaining <= 0 {
		g.state.TimeRemaining = 0
		g.state.Playing = false
		g.state.Over = true
		over = true
		finalScore = g.state.Score

		newHigh := finalScore > g.state.HighScore
		if newHigh {
			g.state.HighScore = finalScore
		}
		events = append(events, Event{Kind: EventGameOver, Score: finalScore, Message: gameOverMessage(finalScore, newHigh), NewHighScore: newHigh})
	}

	g.events = append(g.events, events...)
	if len(g.events) > maxEvents {
		g.events = g.events[len(g.events)-maxEvents:]
	}
	onOver := g.onOver
	g.mu.Unlock()

	if over && onOver != nil {
		onOver(finalScore)
	}
	return events
}

func gameOverMessage(score int, newHigh bool) string {
	if newHigh {
		return "Congratulations! You achieved a new high score of " + strconv.Itoa(score) + " points! You're a true sunshine hero!"
	}
	return "Great job! You scored " + strconv.Itoa(score) + " points. Remember, every healthy choice you make in real life helps you and others feel better!"
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Snapshot returns a copy of the current state.
func (g *Game) Snapshot() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := g.state
	s.Items = append([]Item(nil), g.state.Items...)
	return s
}

// DrainEvents returns and clears the events not yet shown to the player.
func (g *Game) DrainEvents() []Event {
	g.mu.Lock()
	defer g.mu.Unlock()
	ev := g.events
	g.events = nil
	return ev
}

// Emoji returns the emoji used for items of kind.
func Emoji(kind Kind) []string {
	if kind == Healthy {
		return append([]string(nil), healthyEmoji...)
	}
	return append([]string(nil), unhealthyEmoji...)
}
