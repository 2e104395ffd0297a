package tracker

import (
	"math/rand"
	"slices"
	"sync"
	"time"
)

const (
	NotificationInitialDelay = 3 * time.Second
	NotificationVisibleFor   = 4 * time.Second
	recentCombinations       = 5
	maxPickAttempts          = 50
)

var notificationNames = []string{
	"Ana", "Maria", "Juliana", "Fernanda", "Priscila",
	"Camila", "Beatriz", "Larissa", "Amanda", "Bruna",
	"Carolina", "Gabriela", "Leticia", "Mariana", "Patricia",
	"Rafaela", "Renata", "Sabrina", "Tatiana", "Vanessa",
	"Aline", "Bianca", "Daniela", "Isabela", "Jessica",
	"Natalia", "Luciana", "Cristina", "Paula", "Adriana",
	"Monica", "Sandra", "Simone", "Claudia", "Carla",
	"Roberta", "Viviane", "Eliane", "Andreia", "Michele",
	"Raquel", "Flavia", "Debora", "Cintia", "Rosana",
	"Luana", "Tais", "Giovana", "Helena", "Sofia",
}

var notificationCities = []string{
	"São Paulo", "Rio de Janeiro", "Belo Horizonte", "Campinas",
	"Guarulhos", "Santos", "Niterói", "Ribeirão Preto",
	"Curitiba", "Porto Alegre", "Florianópolis", "Londrina",
	"Joinville", "Caxias do Sul",
	"Salvador", "Fortaleza", "Recife", "Natal", "João Pessoa",
	"Maceió", "Teresina", "São Luís",
	"Brasília", "Goiânia", "Campo Grande", "Cuiabá",
	"Manaus", "Belém", "Porto Velho", "Palmas",
}

// Notification is one "someone just joined" toast.
type Notification struct {
	Name    string `json:"name"`
	City    string `json:"city"`
	Visible bool   `json:"visible"`
}

// SocialProofNotifier shows a toast after NotificationInitialDelay and then
// every interval, each visible for NotificationVisibleFor.
type SocialProofNotifier struct {
	mu       sync.Mutex
	clock    Clock
	interval time.Duration
	rnd      *rand.Rand
	recent   []string
	current  *Notification
	first    Timer
	repeat   Timer
	hideT    Timer
	stopped  bool
	onChange func(*Notification)
}

func NewSocialProofNotifier(clock Clock, interval time.Duration, rnd *rand.Rand, onChange func(*Notification)) *SocialProofNotifier {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(clock.Now().UnixNano()))
	}
	return &SocialProofNotifier{clock: clock, interval: interval, rnd: rnd, onChange: onChange}
}

func (n *SocialProofNotifier) Start() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.stopped || n.first != nil {
		return
	}
	n.first = n.clock.AfterFunc(NotificationInitialDelay, func() {
		n.show()
		n.mu.Lock()
		if !n.stopped && n.interval > 0 {
			n.repeat = n.clock.Every(n.interval, n.show)
		}
		n.mu.Unlock()
	})
}

func (n *SocialProofNotifier) show() {
	n.mu.Lock()
	if n.stopped {
		n.mu.Unlock()
		return
	}
	name, city := n.pick()
	shown := &Notification{Name: name, City: city, Visible: true}
	n.current = shown
	if n.hideT != nil {
		n.hideT.Stop()
	}
	n.hideT = n.clock.AfterFunc(NotificationVisibleFor, func() { n.hide(shown) })
	n.mu.Unlock()
	n.emit(shown)
}

func (n *SocialProofNotifier) hide(shown *Notification) {
	n.mu.Lock()
	if n.stopped || n.current != shown {
		n.mu.Unlock()
		return
	}
	n.current = nil
	n.mu.Unlock()
	n.emit(nil)
}

// pick draws a name and city that is not among the recent combinations,
// giving up after maxPickAttempts draws.
func (n *SocialProofNotifier) pick() (string, string) {
	var name, city, key string
	for attempt := 0; attempt < maxPickAttempts; attempt++ {
		name = notificationNames[n.rnd.Intn(len(notificationNames))]
		city = notificationCities[n.rnd.Intn(len(notificationCities))]
		key = name + "-" + city
		if !slices.Contains(n.recent, key) {
			break
		}
	}
	n.recent = append(n.recent, key)
	if len(n.recent) > recentCombinations {
		n.recent = n.recent[1:]
	}
	return name, city
}

func (n *SocialProofNotifier) emit(current *Notification) {
	if n.onChange == nil {
		return
	}
	if current != nil {
		c := *current
		current = &c
	}
	n.onChange(current)
}

// Current returns the visible notification, if any.
func (n *SocialProofNotifier) Current() *Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return nil
	}
	c := *n.current
	return &c
}

func (n *SocialProofNotifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopped = true
	for _, t := range []Timer{n.first, n.repeat, n.hideT} {
		if t != nil {
			t.Stop()
		}
	}
	n.current = nil
}

// NotificationPool is the name and city lists handed to the browser runtime.
type NotificationPool struct {
	Names  []string `json:"names"`
	Cities []string `json:"cities"`
}

func DefaultNotificationPool() NotificationPool {
	return NotificationPool{Names: slices.Clone(notificationNames), Cities: slices.Clone(notificationCities)}
}
