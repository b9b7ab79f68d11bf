package memory

import (
	"sync"
	"time"

	"questgrid/internal/domain/quest"
)

// Store backs the in-memory repos used by unit tests and local runs. Each
// repo operation is atomic under the store mutex, mirroring the row-level
// atomicity the SQL adapter gets from the database.
type Store struct {
	mu sync.Mutex

	nodes       map[string]quest.Node
	conditions  map[string]quest.Condition
	targets     map[string]quest.Target
	effects     map[string]quest.Effect
	itemEffects map[string]quest.ItemEffectConfig

	players         map[string]quest.Player
	inventory       map[string]int       // player::episode::item → quantity
	progressItems   map[string]time.Time // player::episode::item
	achievements    map[string]time.Time // player::achievement
	statusEffects   map[string]quest.StatusEffect
	targetProgress  map[string]time.Time // player::target
	nodeCompletions map[string]time.Time // player::node

	sessions map[string]quest.ExchangeSession
}

func NewStore() *Store {
	return &Store{
		nodes:           make(map[string]quest.Node),
		conditions:      make(map[string]quest.Condition),
		targets:         make(map[string]quest.Target),
		effects:         make(map[string]quest.Effect),
		itemEffects:     make(map[string]quest.ItemEffectConfig),
		players:         make(map[string]quest.Player),
		inventory:       make(map[string]int),
		progressItems:   make(map[string]time.Time),
		achievements:    make(map[string]time.Time),
		statusEffects:   make(map[string]quest.StatusEffect),
		targetProgress:  make(map[string]time.Time),
		nodeCompletions: make(map[string]time.Time),
		sessions:        make(map[string]quest.ExchangeSession),
	}
}

func key2(a, b string) string {
	return a + "::" + b
}

func key3(a, b, c string) string {
	return a + "::" + b + "::" + c
}

func (s *Store) SeedPlayer(p quest.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[p.ID] = p
}

func (s *Store) SeedInventory(playerID, episodeID, itemID string, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inventory[key3(playerID, episodeID, itemID)] = qty
}

func (s *Store) SeedNode(n quest.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[n.ID] = n
}

func (s *Store) SeedCondition(c quest.Condition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conditions[c.ID] = c
}

func (s *Store) SeedTarget(t quest.Target) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targets[t.ID] = t
}

func (s *Store) SeedEffect(e quest.Effect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.effects[e.ID] = e
}

func (s *Store) SeedItemEffect(cfg quest.ItemEffectConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.itemEffects[cfg.ID] = cfg
}

func (s *Store) SeedStatusEffect(e quest.StatusEffect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusEffects[e.ID] = e
}
