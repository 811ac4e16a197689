package game

import "fmt"

// CardRegistry maps card names to their constructor functions. The pool is
// intentionally small: the real card database is an external collaborator,
// and these cards exist to exercise every casting path and mechanic.
var CardRegistry = map[string]func() *Card{
	"Forest":             Forest,
	"Island":             Island,
	"Mountain":           Mountain,
	"Plains":             Plains,
	"Swamp":              Swamp,
	"Glade Sentinel":     GladeSentinel,
	"Cliff Vanguard":     CliffVanguard,
	"Duskwing Stalker":   DuskwingStalker,
	"Rampart Colossus":   RampartColossus,
	"Venom Recluse":      VenomRecluse,
	"Aerie Interceptor":  AerieInterceptor,
	"Ember Bolt":         EmberBolt,
	"Cinder Surge":       CinderSurge,
	"Tidal Refusal":      TidalRefusal,
	"Insight Draught":    InsightDraught,
	"Gravecall Ritual":   GravecallRitual,
	"Thicket Blessing":   ThicketBlessing,
	"Scrying Lens":       ScryingLens,
	"Silt Prowler":       SiltProwler,
	"Vault Sifter":       VaultSifter,
	"Torchlight Raid":    TorchlightRaid,
	"Emberfall Return":   EmberfallReturn,
	"Gloom Husk":         GloomHusk,
	"Warded Halberd":     WardedHalberd,
	"Shadowfoot Ninja":   ShadowfootNinja,
	"Mire Dredger":       MireDredger,
	"Runestone Omen":     RunestoneOmen,
	"Bough Warden":       BoughWarden,
	"Ridge Seeker":       RidgeSeeker,
	"Spore Tyrant":       SporeTyrant,
	"Beacon of Daybreak": BeaconOfDaybreak,
	"Siege of Embers":    SiegeOfEmbers,
	"Hinterland Grove":   HinterlandGrove,
	"Wayfarer's Tale":    WayfarersTale,
	"Masked Lurker":      MaskedLurker,
	"Splitstream":        Splitstream,
}

// LookupCard looks up a card by name and returns a new instance. Panics if
// the card is not in the registry.
func LookupCard(name string) *Card {
	ctor, ok := CardRegistry[name]
	if !ok {
		panic(fmt.Sprintf("card not found in registry: %q", name))
	}
	return ctor()
}

// --- Lands ---

func basicLand(name string, c Color) *Card {
	return &Card{Name: name, Types: []CardType{TypeLand}, Subtypes: []string{"Basic"}, Produces: []Color{c}}
}

func Forest() *Card   { return basicLand("Forest", ColorGreen) }
func Island() *Card   { return basicLand("Island", ColorBlue) }
func Mountain() *Card { return basicLand("Mountain", ColorRed) }
func Plains() *Card   { return basicLand("Plains", ColorWhite) }
func Swamp() *Card    { return basicLand("Swamp", ColorBlack) }

// --- Creatures ---

func GladeSentinel() *Card {
	return &Card{
		Name: "Glade Sentinel", Types: []CardType{TypeCreature},
		ManaCost: ManaCost{Generic: 1, Pips: pips(ColorGreen, 1)},
		Power:    2, Toughness: 2,
	}
}

func CliffVanguard() *Card {
	return &Card{
		Name: "Cliff Vanguard", Types: []CardType{TypeCreature},
		ManaCost: ManaCost{Generic: 1, Pips: pips(ColorRed, 1)},
		Power:    2, Toughness: 2,
		Keywords: []Keyword{KwFirstStrike},
	}
}

func DuskwingStalker() *Card {
	return &Card{
		Name: "Duskwing Stalker", Types: []CardType{TypeCreature},
		ManaCost: ManaCost{Generic: 2, Pips: pips(ColorBlack, 1)},
		Power:    2, Toughness: 1,
		Keywords: []Keyword{KwFlying, KwDeathtouch},
	}
}

func RampartColossus() *Card {
	return &Card{
		Name: "Rampart Colossus", Types: []CardType{TypeCreature},
		ManaCost: ManaCost{Generic: 4, Pips: pips(ColorGreen, 2)},
		Power:    6, Toughness: 6,
		Keywords: []Keyword{KwTrample, KwVigilance},
	}
}

func VenomRecluse() *Card {
	return &Card{
		Name: "Venom Recluse", Types: []CardType{TypeCreature},
		ManaCost: ManaCost{Generic: 1, Pips: pips(ColorGreen, 1)},
		Power:    1, Toughness: 3,
		Keywords: []Keyword{KwReach, KwDeathtouch},
	}
}

func AerieInterceptor() *Card {
	return &Card{
		Name: "Aerie Interceptor", Types: []CardType{TypeCreature},
		ManaCost: ManaCost{Generic: 2, Pips: pips(ColorWhite, 1)},
		Power:    3, Toughness: 3,
		Keywords: []Keyword{KwFlying, KwLifelink},
		Mechanics: map[Mechanic]ManaCost{MechKicker: {Generic: 2}},
		Amount:   1,
	}
}

func SiltProwler() *Card {
	return &Card{
		Name: "Silt Prowler", Types: []CardType{TypeCreature},
		ManaCost: ManaCost{Generic: 2, Pips: pips(ColorBlue, 1)},
		Power:    3, Toughness: 2,
		Keywords:  []Keyword{KwMenace},
		Mechanics: map[Mechanic]ManaCost{MechMorph: {Generic: 2, Pips: pips(ColorBlue, 1)}},
	}
}

func GloomHusk() *Card {
	return &Card{
		Name: "Gloom Husk", Types: []CardType{TypeCreature},
		ManaCost: ManaCost{Generic: 3, Pips: pips(ColorBlack, 1)},
		Power:    4, Toughness: 3,
		Mechanics: map[Mechanic]ManaCost{MechEscape: {Generic: 2, Pips: pips(ColorBlack, 1)}},
		Triggers:  []TriggerSpec{{When: "etb", Effect: "discard", Amount: 1}},
	}
}

func ShadowfootNinja() *Card {
	return &Card{
		Name: "Shadowfoot Ninja", Types: []CardType{TypeCreature},
		Subtypes: []string{"Ninja"},
		ManaCost: ManaCost{Generic: 3, Pips: pips(ColorBlack, 1)},
		Power:    3, Toughness: 2,
		Mechanics: map[Mechanic]ManaCost{MechNinjutsu: {Generic: 1, Pips: pips(ColorBlack, 1)}},
		Triggers:  []TriggerSpec{{When: "combat_damage", Effect: "draw", Amount: 1}},
	}
}

func MireDredger() *Card {
	return &Card{
		Name: "Mire Dredger", Types: []CardType{TypeCreature},
		ManaCost: ManaCost{Generic: 1, Pips: pips(ColorBlack, 1)},
		Power:    1, Toughness: 1,
		Mechanics: map[Mechanic]ManaCost{MechDredge: {Generic: 2}},
	}
}

func BoughWarden() *Card {
	return &Card{
		Name: "Bough Warden", Types: []CardType{TypeCreature},
		ManaCost: ManaCost{Generic: 1, Pips: pips(ColorGreen, 1)},
		Power:    1, Toughness: 1,
		Triggers: []TriggerSpec{{When: "dies", Effect: "draw", Amount: 1}},
	}
}

func SporeTyrant() *Card {
	return &Card{
		Name: "Spore Tyrant", Types: []CardType{TypeCreature},
		Subtypes: []string{"Legendary"},
		ManaCost: ManaCost{Generic: 3, Pips: pips(ColorGreen, 2)},
		Power:    5, Toughness: 5,
		Mechanics: map[Mechanic]ManaCost{MechGrandeur: {}},
		Effect:    "token", Amount: 2,
	}
}

func MaskedLurker() *Card {
	return &Card{
		Name: "Masked Lurker", Types: []CardType{TypeCreature},
		ManaCost: ManaCost{Generic: 4, Pips: pips(ColorBlue, 1)},
		Power:    4, Toughness: 4,
		Mechanics: map[Mechanic]ManaCost{MechForetell: {Generic: 1, Pips: pips(ColorBlue, 1)}},
	}
}

// --- Spells ---

func EmberBolt() *Card {
	return &Card{
		Name: "Ember Bolt", Types: []CardType{TypeInstant},
		ManaCost: ManaCost{Pips: pips(ColorRed, 1)},
		Effect:   "damage", Amount: 3,
		Target: &TargetSpec{Kind: TargetPlayer, Type: -1, Min: 1, Max: 1},
	}
}

func CinderSurge() *Card {
	return &Card{
		Name: "Cinder Surge", Types: []CardType{TypeSorcery},
		ManaCost: ManaCost{Pips: pips(ColorRed, 1), HasX: true},
		Effect:   "damage",
		Target:   &TargetSpec{Kind: TargetPlayer, Type: -1, Min: 1, Max: 1},
	}
}

func TidalRefusal() *Card {
	return &Card{
		Name: "Tidal Refusal", Types: []CardType{TypeInstant},
		ManaCost: ManaCost{Generic: 1, Pips: pips(ColorBlue, 1)},
		Effect:   "counter",
		Target:   &TargetSpec{Kind: TargetStackItem, Type: -1, Min: 1, Max: 1},
	}
}

func InsightDraught() *Card {
	return &Card{
		Name: "Insight Draught", Types: []CardType{TypeInstant},
		ManaCost: ManaCost{Generic: 2, Pips: pips(ColorBlue, 1)},
		Effect:   "draw", Amount: 2,
		Mechanics: map[Mechanic]ManaCost{MechFlashback: {Generic: 4, Pips: pips(ColorBlue, 1)}},
	}
}

func GravecallRitual() *Card {
	return &Card{
		Name: "Gravecall Ritual", Types: []CardType{TypeSorcery},
		ManaCost: ManaCost{Generic: 2, Pips: pips(ColorBlack, 2)},
		Effect:   "reanimate",
		Target:   &TargetSpec{Kind: TargetGraveyardCard, Type: TypeCreature, Min: 1, Max: 1},
	}
}

func ThicketBlessing() *Card {
	return &Card{
		Name: "Thicket Blessing", Types: []CardType{TypeInstant},
		ManaCost: ManaCost{Pips: pips(ColorGreen, 1)},
		Effect:   "pump", Amount: 2,
		Target: &TargetSpec{Kind: TargetPermanent, Type: TypeCreature, Min: 1, Max: 1},
	}
}

func ScryingLens() *Card {
	return &Card{
		Name: "Scrying Lens", Types: []CardType{TypeSorcery},
		ManaCost: ManaCost{Pips: pips(ColorBlue, 1)},
		Effect:   "scry", Amount: 2,
	}
}

func VaultSifter() *Card {
	return &Card{
		Name: "Vault Sifter", Types: []CardType{TypeSorcery},
		ManaCost: ManaCost{Pips: pips(ColorBlack, 1)},
		Effect:   "surveil", Amount: 2,
	}
}

func TorchlightRaid() *Card {
	return &Card{
		Name: "Torchlight Raid", Types: []CardType{TypeSorcery},
		ManaCost: ManaCost{Generic: 1, Pips: pips(ColorRed, 1)},
		Modes:    []string{"damage", "draw", "gain_life"},
		MinModes: 1, MaxModes: 2, Amount: 2,
		Mechanics: map[Mechanic]ManaCost{MechEscalate: {Generic: 2}},
	}
}

func EmberfallReturn() *Card {
	return &Card{
		Name: "Emberfall Return", Types: []CardType{TypeSorcery},
		ManaCost: ManaCost{Generic: 6, Pips: pips(ColorRed, 1)},
		Effect:   "damage", Amount: 4,
		Mechanics: map[Mechanic]ManaCost{MechDelve: {Generic: 6, Pips: pips(ColorRed, 1)}},
		Target:    &TargetSpec{Kind: TargetPlayer, Type: -1, Min: 1, Max: 1},
	}
}

func RunestoneOmen() *Card {
	return &Card{
		Name: "Runestone Omen", Types: []CardType{TypeSorcery},
		ManaCost: ManaCost{Generic: 1, Pips: pips(ColorBlue, 1)},
		Effect:   "clash",
	}
}

func WayfarersTale() *Card {
	return &Card{
		Name: "Wayfarer's Tale", Types: []CardType{TypeSorcery},
		ManaCost:   ManaCost{Generic: 1, Pips: pips(ColorGreen, 1)},
		Additional: "sacrifice_creature",
		Effect:     "draw", Amount: 2,
		Mechanics: map[Mechanic]ManaCost{MechKicker: {Generic: 3}},
	}
}

func Splitstream() *Card {
	return &Card{
		Name: "Splitstream", Types: []CardType{TypeInstant},
		ManaCost: ManaCost{Generic: 1, Pips: pips(ColorBlue, 1)},
		Effect:   "draw", Amount: 1,
		Faces: []CardFace{{
			Name: "Splitstream // Undertow", Types: []CardType{TypeSorcery},
			ManaCost: ManaCost{Generic: 2, Pips: pips(ColorBlue, 1)},
			Effect:   "bounce", Amount: 1,
		}},
	}
}

// --- Artifacts / attachments ---

func WardedHalberd() *Card {
	return &Card{
		Name: "Warded Halberd", Types: []CardType{TypeArtifact},
		Subtypes: []string{"Equipment"},
		ManaCost: ManaCost{Generic: 2},
		Mechanics: map[Mechanic]ManaCost{MechEquip: {Generic: 1}},
	}
}

// --- Planeswalker / battle / MDFC ---

func BeaconOfDaybreak() *Card {
	return &Card{
		Name: "Beacon of Daybreak", Types: []CardType{TypePlaneswalker},
		Subtypes: []string{"Legendary"},
		ManaCost: ManaCost{Generic: 2, Pips: pips(ColorWhite, 2)},
		Loyalty:  4,
		Abilities: []AbilitySpec{
			{Index: 0, Loyalty: 1, Effect: "gain_life", Amount: 2},
			{Index: 1, Loyalty: -2, Effect: "token", Amount: 1},
			{Index: 2, Loyalty: -6, Effect: "ultimate", Amount: 5},
		},
	}
}

func SiegeOfEmbers() *Card {
	return &Card{
		Name: "Siege of Embers", Types: []CardType{TypeBattle},
		ManaCost: ManaCost{Generic: 1, Pips: pips(ColorRed, 1)},
		Defense:  3,
		Triggers: []TriggerSpec{{When: "etb", Effect: "damage", Amount: 1}},
	}
}

func HinterlandGrove() *Card {
	return &Card{
		Name: "Hinterland Grove", Types: []CardType{TypeSorcery},
		ManaCost: ManaCost{Generic: 1, Pips: pips(ColorGreen, 1)},
		Effect:   "token", Amount: 1,
		Faces: []CardFace{{
			Name: "Hinterland Grove (Land)", Types: []CardType{TypeLand},
			Produces: []Color{ColorGreen},
		}},
	}
}

func RidgeSeeker() *Card {
	return &Card{
		Name: "Ridge Seeker", Types: []CardType{TypeCreature},
		ManaCost: ManaCost{Generic: 1, Pips: pips(ColorGreen, 1)},
		Power:    2, Toughness: 1,
		Mechanics: map[Mechanic]ManaCost{MechAdventure: {}},
		Faces: []CardFace{{
			Name: "Seek the Ridge", Types: []CardType{TypeSorcery},
			ManaCost: ManaCost{Pips: pips(ColorGreen, 1)},
			Effect:   "scry", Amount: 2,
		}},
	}
}

// pips builds a pip array with n pips of one colour.
func pips(c Color, n int) [6]int {
	var p [6]int
	p[c] = n
	return p
}
