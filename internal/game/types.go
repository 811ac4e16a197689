package game

import "fmt"

// --- Enums ---

type Phase int

const (
	PhaseNone Phase = iota
	PhaseMulligan
	PhaseUntap
	PhaseUpkeep
	PhaseDraw
	PhaseMainPre
	PhaseBeginCombat
	PhaseDeclareAttackers
	PhaseDeclareBlockers
	PhaseFirstStrikeDamage
	PhaseCombatDamage
	PhaseEndOfCombat
	PhaseMainPost
	PhaseEndStep
	PhaseCleanup
	PhaseTargeting
	PhaseSacrifice
	PhaseChoose
)

func (p Phase) String() string {
	switch p {
	case PhaseMulligan:
		return "Mulligan"
	case PhaseUntap:
		return "Untap"
	case PhaseUpkeep:
		return "Upkeep"
	case PhaseDraw:
		return "Draw"
	case PhaseMainPre:
		return "Precombat Main"
	case PhaseBeginCombat:
		return "Begin Combat"
	case PhaseDeclareAttackers:
		return "Declare Attackers"
	case PhaseDeclareBlockers:
		return "Declare Blockers"
	case PhaseFirstStrikeDamage:
		return "First Strike Damage"
	case PhaseCombatDamage:
		return "Combat Damage"
	case PhaseEndOfCombat:
		return "End of Combat"
	case PhaseMainPost:
		return "Postcombat Main"
	case PhaseEndStep:
		return "End Step"
	case PhaseCleanup:
		return "Cleanup"
	case PhaseTargeting:
		return "Targeting"
	case PhaseSacrifice:
		return "Sacrifice"
	case PhaseChoose:
		return "Choose"
	default:
		return "None"
	}
}

// Interactive reports whether players receive priority in this phase.
func (p Phase) Interactive() bool {
	switch p {
	case PhaseUntap, PhaseCleanup, PhaseNone, PhaseMulligan:
		return false
	}
	return true
}

// IsChoice reports whether this is one of the choice sub-phases.
func (p Phase) IsChoice() bool {
	return p == PhaseTargeting || p == PhaseSacrifice || p == PhaseChoose
}

// phaseOrder is the fixed turn sequence.
var phaseOrder = []Phase{
	PhaseUntap, PhaseUpkeep, PhaseDraw, PhaseMainPre,
	PhaseBeginCombat, PhaseDeclareAttackers, PhaseDeclareBlockers,
	PhaseFirstStrikeDamage, PhaseCombatDamage, PhaseEndOfCombat,
	PhaseMainPost, PhaseEndStep, PhaseCleanup,
}

type Color int

const (
	ColorWhite Color = iota
	ColorBlue
	ColorBlack
	ColorRed
	ColorGreen
	ColorColorless
)

func (c Color) String() string {
	switch c {
	case ColorWhite:
		return "W"
	case ColorBlue:
		return "U"
	case ColorBlack:
		return "B"
	case ColorRed:
		return "R"
	case ColorGreen:
		return "G"
	default:
		return "C"
	}
}

// ManaPool holds floating mana in six buckets (WUBRG + colorless).
type ManaPool [6]int

func (mp *ManaPool) Total() int {
	t := 0
	for _, n := range mp {
		t += n
	}
	return t
}

func (mp *ManaPool) Empty() {
	*mp = ManaPool{}
}

func (mp ManaPool) String() string {
	s := ""
	for c, n := range mp {
		for i := 0; i < n; i++ {
			s += Color(c).String()
		}
	}
	if s == "" {
		return "-"
	}
	return s
}

// ManaCost is a cost with colored pips, a generic portion, and an X marker.
type ManaCost struct {
	Pips    [6]int `yaml:"pips,omitempty" json:"pips,omitempty"` // WUBRG + C pips
	Generic int    `yaml:"generic,omitempty" json:"generic,omitempty"`
	HasX    bool   `yaml:"x,omitempty" json:"x,omitempty"`
}

// CMC returns the converted mana cost (X counts as 0).
func (mc ManaCost) CMC() int {
	t := mc.Generic
	for _, n := range mc.Pips {
		t += n
	}
	return t
}

func (mc ManaCost) String() string {
	s := ""
	if mc.HasX {
		s += "{X}"
	}
	if mc.Generic > 0 || (mc.CMC() == 0 && !mc.HasX) {
		s += fmt.Sprintf("{%d}", mc.Generic)
	}
	for c, n := range mc.Pips {
		for i := 0; i < n; i++ {
			s += "{" + Color(c).String() + "}"
		}
	}
	return s
}

type CardType int

const (
	TypeLand CardType = iota
	TypeCreature
	TypeInstant
	TypeSorcery
	TypeArtifact
	TypeEnchantment
	TypePlaneswalker
	TypeBattle
)

func (ct CardType) String() string {
	switch ct {
	case TypeLand:
		return "Land"
	case TypeCreature:
		return "Creature"
	case TypeInstant:
		return "Instant"
	case TypeSorcery:
		return "Sorcery"
	case TypeArtifact:
		return "Artifact"
	case TypeEnchantment:
		return "Enchantment"
	case TypePlaneswalker:
		return "Planeswalker"
	case TypeBattle:
		return "Battle"
	default:
		return "Unknown"
	}
}

// Keyword is a capability flag checked through the AbilityHandler.
type Keyword string

const (
	KwFlying       Keyword = "flying"
	KwReach        Keyword = "reach"
	KwHaste        Keyword = "haste"
	KwVigilance    Keyword = "vigilance"
	KwTrample      Keyword = "trample"
	KwFirstStrike  Keyword = "first strike"
	KwDoubleStrike Keyword = "double strike"
	KwDeathtouch   Keyword = "deathtouch"
	KwLifelink     Keyword = "lifelink"
	KwMenace       Keyword = "menace"
	KwDefender     Keyword = "defender"
	KwIndestruct   Keyword = "indestructible"
	KwSplitSecond  Keyword = "split second"
	KwCantBlock    Keyword = "can't block"
	KwUnblockable  Keyword = "can't be blocked"
)

// CounterType names a kind of counter on a permanent.
type CounterType string

const (
	CounterPlusOne  CounterType = "+1/+1"
	CounterMinusOne CounterType = "-1/-1"
	CounterLoyalty  CounterType = "loyalty"
	CounterDefense  CounterType = "defense"
	CounterLevel    CounterType = "level"
	CounterTime     CounterType = "time"
	CounterCharge   CounterType = "charge"
)

// Mechanic tags an alternative/additional casting mechanic on a card.
type Mechanic string

const (
	MechDisturb     Mechanic = "disturb"
	MechDash        Mechanic = "dash"
	MechSpectacle   Mechanic = "spectacle"
	MechBestow      Mechanic = "bestow"
	MechBlitz       Mechanic = "blitz"
	MechEternalize  Mechanic = "eternalize"
	MechEmbalm      Mechanic = "embalm"
	MechReinforce   Mechanic = "reinforce"
	MechChannel     Mechanic = "channel"
	MechTransmute   Mechanic = "transmute"
	MechForecast    Mechanic = "forecast"
	MechSuspend     Mechanic = "suspend"
	MechUnearth     Mechanic = "unearth"
	MechEncore      Mechanic = "encore"
	MechPartner     Mechanic = "partner"
	MechCompanion   Mechanic = "companion"
	MechEvoke       Mechanic = "evoke"
	MechMiracle     Mechanic = "miracle"
	MechForetell    Mechanic = "foretell"
	MechFlashback   Mechanic = "flashback"
	MechJumpStart   Mechanic = "jump-start"
	MechEscape      Mechanic = "escape"
	MechMadness     Mechanic = "madness"
	MechOverload    Mechanic = "overload"
	MechEmerge      Mechanic = "emerge"
	MechDelve       Mechanic = "delve"
	MechAftermath   Mechanic = "aftermath"
	MechSpree       Mechanic = "spree"
	MechKicker      Mechanic = "kicker"
	MechEscalate    Mechanic = "escalate"
	MechOffspring   Mechanic = "offspring"
	MechImpending   Mechanic = "impending"
	MechDredge      Mechanic = "dredge"
	MechNinjutsu    Mechanic = "ninjutsu"
	MechMorph       Mechanic = "morph"
	MechAdventure   Mechanic = "adventure"
	MechGrandeur    Mechanic = "grandeur"
	MechConspire    Mechanic = "conspire"
	MechCycling     Mechanic = "cycling"
	MechBoast       Mechanic = "boast"
	MechExert       Mechanic = "exert"
	MechMutate      Mechanic = "mutate"
	MechAdapt       Mechanic = "adapt"
	MechInvestigate Mechanic = "investigate"
	MechAmass       Mechanic = "amass"
	MechLearn       Mechanic = "learn"
	MechVenture     Mechanic = "venture"
	MechExplore     Mechanic = "explore"
	MechGoad        Mechanic = "goad"
	MechEquip       Mechanic = "equip"
	MechFortify     Mechanic = "fortify"
	MechReconfigure Mechanic = "reconfigure"
	MechLevelUp     Mechanic = "level up"
)

// TargetKind categorises what a target reference points at.
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetPlayer
	TargetPermanent
	TargetStackItem
	TargetGraveyardCard
)

// TargetRef is a stable reference to a targetable object.
type TargetRef struct {
	Kind   TargetKind `json:"kind"`
	Player int        `json:"player"`        // owner/controller side
	ID     int        `json:"id,omitempty"`  // card instance ID (permanents, graveyard cards)
	Index  int        `json:"idx,omitempty"` // stack index for TargetStackItem
}

func (t TargetRef) String() string {
	switch t.Kind {
	case TargetPlayer:
		return fmt.Sprintf("P%d", t.Player+1)
	case TargetPermanent:
		return fmt.Sprintf("perm#%d", t.ID)
	case TargetStackItem:
		return fmt.Sprintf("stack[%d]", t.Index)
	case TargetGraveyardCard:
		return fmt.Sprintf("gy#%d", t.ID)
	default:
		return "none"
	}
}

// TargetSpec declares a card's targeting requirement.
type TargetSpec struct {
	Kind TargetKind `yaml:"kind" json:"kind"`
	// Type restricts permanent targets to a card type (TypeCreature etc.);
	// -1 means any permanent.
	Type CardType `yaml:"type" json:"type"`
	Min  int      `yaml:"min" json:"min"`
	Max  int      `yaml:"max" json:"max"`
}

// TriggerSpec declares a simple triggered ability on a card.
type TriggerSpec struct {
	// When is the event that fires the trigger: "etb", "dies", "attack", "upkeep".
	When   string `yaml:"when" json:"when"`
	Effect string `yaml:"effect" json:"effect"` // effect key resolved by the AbilityHandler
	Amount int    `yaml:"amount" json:"amount"`
}

// AbilitySpec declares an activated ability on a permanent.
type AbilitySpec struct {
	Index    int      `yaml:"index" json:"index"`
	Cost     ManaCost `yaml:"cost" json:"cost"`
	TapCost  bool     `yaml:"tap" json:"tap"`
	IsMana   bool     `yaml:"mana" json:"mana"` // mana abilities bypass the stack
	Produces Color    `yaml:"produces" json:"produces"`
	Effect   string   `yaml:"effect" json:"effect"`
	Amount   int      `yaml:"amount" json:"amount"`
	Loyalty  int      `yaml:"loyalty" json:"loyalty"` // loyalty delta for planeswalker abilities
}

// --- Card definition (static, from the card pool) ---

// CardFace is a secondary face: MDFC back, adventure half, or split half.
type CardFace struct {
	Name      string     `yaml:"name" json:"name"`
	Types     []CardType `yaml:"types" json:"types"`
	ManaCost  ManaCost   `yaml:"cost" json:"cost"`
	Power     int        `yaml:"power" json:"power"`
	Toughness int        `yaml:"toughness" json:"toughness"`
	Produces  []Color    `yaml:"produces" json:"produces"`
	Effect    string     `yaml:"effect" json:"effect"`
	Amount    int        `yaml:"amount" json:"amount"`
	Text      string     `yaml:"text" json:"text"`
}

type Card struct {
	Name      string                `yaml:"name" json:"name"`
	Types     []CardType            `yaml:"types" json:"types"`
	Subtypes  []string              `yaml:"subtypes" json:"subtypes"`
	ManaCost  ManaCost              `yaml:"cost" json:"cost"`
	Power     int                   `yaml:"power" json:"power"`
	Toughness int                   `yaml:"toughness" json:"toughness"`
	Loyalty   int                   `yaml:"loyalty" json:"loyalty"`
	Defense   int                   `yaml:"defense" json:"defense"` // battles
	Text      string                `yaml:"text" json:"text"`
	Keywords  []Keyword             `yaml:"keywords" json:"keywords"`
	Produces  []Color               `yaml:"produces" json:"produces"` // lands
	Mechanics map[Mechanic]ManaCost `yaml:"mechanics" json:"mechanics"`
	Faces     []CardFace            `yaml:"faces" json:"faces"`
	Modes     []string              `yaml:"modes" json:"modes"` // modal spells / spree modes
	MinModes  int                   `yaml:"min_modes" json:"min_modes"`
	MaxModes  int                   `yaml:"max_modes" json:"max_modes"`
	Target    *TargetSpec           `yaml:"target" json:"target"`
	Triggers  []TriggerSpec         `yaml:"triggers" json:"triggers"`
	Abilities []AbilitySpec         `yaml:"abilities" json:"abilities"`
	// Effect is the resolution key consulted by the AbilityHandler for
	// instants/sorceries ("damage", "draw", "counter", "destroy", ...).
	Effect string `yaml:"effect" json:"effect"`
	// Additional names a non-mana additional cost ("sacrifice_creature").
	Additional string `yaml:"additional" json:"additional"`
	Amount int    `yaml:"amount" json:"amount"`
	Token  bool   `yaml:"token" json:"token"`
}

func (c *Card) String() string { return c.Name }

// Is reports whether the card has the given type.
func (c *Card) Is(t CardType) bool {
	for _, ct := range c.Types {
		if ct == t {
			return true
		}
	}
	return false
}

// HasKeywordStatic reports a printed keyword, ignoring granted ones.
func (c *Card) HasKeywordStatic(kw Keyword) bool {
	for _, k := range c.Keywords {
		if k == kw {
			return true
		}
	}
	return false
}

// HasMechanic reports whether the card carries the given mechanic.
func (c *Card) HasMechanic(m Mechanic) bool {
	if c.Mechanics == nil {
		return false
	}
	_, ok := c.Mechanics[m]
	return ok
}

// MechanicCost returns the cost attached to a mechanic.
func (c *Card) MechanicCost(m Mechanic) ManaCost {
	return c.Mechanics[m]
}

// IsPermanentType reports whether the card stays on the battlefield on resolution.
func (c *Card) IsPermanentType() bool {
	return c.Is(TypeCreature) || c.Is(TypeArtifact) || c.Is(TypeEnchantment) ||
		c.Is(TypePlaneswalker) || c.Is(TypeLand) || c.Is(TypeBattle)
}

// --- Zone types ---

type ZoneType int

const (
	ZoneLibrary ZoneType = iota
	ZoneHand
	ZoneBattlefield
	ZoneGraveyard
	ZoneExile
	ZoneStack
)

func (z ZoneType) String() string {
	switch z {
	case ZoneLibrary:
		return "Library"
	case ZoneHand:
		return "Hand"
	case ZoneBattlefield:
		return "Battlefield"
	case ZoneGraveyard:
		return "Graveyard"
	case ZoneExile:
		return "Exile"
	case ZoneStack:
		return "Stack"
	default:
		return "Unknown"
	}
}

// --- CardInstance (runtime card in any zone) ---

type CardInstance struct {
	Card       *Card    `json:"card"`
	ID         int      `json:"id"`         // unique instance ID within a game
	Owner      int      `json:"owner"`      // player index (0 or 1) who owns this card
	Controller int      `json:"controller"` // player index currently controlling it
	Zone       ZoneType `json:"zone"`

	// Battlefield state
	Tapped          bool `json:"tapped,omitempty"`
	EnteredThisTurn bool `json:"entered_this_turn,omitempty"`
	FaceDown        bool `json:"face_down,omitempty"` // morph/manifest
	Manifested      bool `json:"manifested,omitempty"`
	Transformed     bool `json:"transformed,omitempty"` // back face up
	Flipped         bool `json:"flipped,omitempty"`
	Damage          int  `json:"damage,omitempty"`
	AttachedTo      int  `json:"attached_to,omitempty"` // instance ID, 0 = unattached
	Level           int  `json:"level,omitempty"`       // Class level
	DoorsUnlocked   int  `json:"doors_unlocked,omitempty"`
	Goaded          bool `json:"goaded,omitempty"`
	Exerted         bool `json:"exerted,omitempty"`
	BoastUsed       bool `json:"boast_used,omitempty"`

	Counters map[CounterType]int `json:"counters,omitempty"`

	// Exile bookkeeping for suspend/foretell/impending style mechanics.
	ExiledFaceDown bool     `json:"exiled_face_down,omitempty"`
	ExiledWith     Mechanic `json:"exiled_with,omitempty"`
}

func (ci *CardInstance) String() string {
	if ci == nil {
		return "(none)"
	}
	if ci.FaceDown {
		return "face-down card"
	}
	return ci.Card.Name
}

// faceDownCard is the characteristics of any face-down permanent.
var faceDownCard = &Card{
	Name:      "",
	Types:     []CardType{TypeCreature},
	Power:     2,
	Toughness: 2,
}

// EffectiveCard returns the face currently presented by this instance:
// the back face when transformed, a generic 2/2 when face-down.
func (ci *CardInstance) EffectiveCard() *Card {
	if ci.FaceDown {
		return faceDownCard
	}
	if ci.Transformed && len(ci.Card.Faces) > 0 {
		f := ci.Card.Faces[0]
		return &Card{
			Name: f.Name, Types: f.Types, ManaCost: f.ManaCost,
			Power: f.Power, Toughness: f.Toughness, Text: f.Text,
			Produces: f.Produces, Keywords: ci.Card.Keywords,
		}
	}
	return ci.Card
}

// CurrentPower returns the effective power including counters.
func (ci *CardInstance) CurrentPower() int {
	c := ci.EffectiveCard()
	p := c.Power + ci.Counters[CounterPlusOne] - ci.Counters[CounterMinusOne]
	if p < 0 {
		p = 0
	}
	return p
}

// CurrentToughness returns the effective toughness including counters.
func (ci *CardInstance) CurrentToughness() int {
	c := ci.EffectiveCard()
	return c.Toughness + ci.Counters[CounterPlusOne] - ci.Counters[CounterMinusOne]
}

// AddCounter adds n counters of the given type (n may be negative).
func (ci *CardInstance) AddCounter(t CounterType, n int) {
	if ci.Counters == nil {
		ci.Counters = map[CounterType]int{}
	}
	ci.Counters[t] += n
	if ci.Counters[t] <= 0 {
		delete(ci.Counters, t)
	}
}
