package game

import "testing"

// Spot-check the fixed index table against the published vocabulary.
func TestVocabularyIndices(t *testing.T) {
	cases := []struct {
		idx   int
		want  ActionType
		param int
	}{
		{0, ActEndTurn, 0},
		{4, ActNoOp, 0},
		{6, ActMulligan, 0},
		{11, ActPassPriority, 0},
		{12, ActConcede, 0},
		{13, ActPlayLand, 0},
		{19, ActPlayLand, 6},
		{20, ActPlaySpell, 0},
		{27, ActPlaySpell, 7},
		{28, ActAttack, 0},
		{47, ActAttack, 19},
		{48, ActBlock, 0},
		{67, ActBlock, 19},
		{68, ActTapLandForMana, 0},
		{99, ActTapLandForEffect, 11},
		{100, ActActivateAbility, 0},
		{159, ActActivateAbility, 59},
		{179, ActTransform, 19},
		{204, ActDefendBattle, 0},
		{205, ActAltCast, 0},
		{223, ActAltCast, 18},
		{224, ActNoOp, 0},
		{225, ActKeepHand, 0},
		{229, ActBottomCard, 3},
		{247, ActDiscardCard, 9},
		{273, ActSelectSpreeMode, 15},
		{283, ActSelectTarget, 9},
		{293, ActSacrificePermanent, 9},
		{294, ActCastForImpending, 0},
		{295, ActPayOffspring, 0},
		{296, ActNoOp, 0},
		{303, ActSearchLibrary, 4},
		{304, ActNoOpSearchFail, 0},
		{305, ActPutToGraveyard, 0},
		{306, ActPutOnTop, 0},
		{307, ActPutOnBottom, 0},
		{308, ActDredge, 0},
		{334, ActProliferate, 0},
		{352, ActReturnFromExile, 5},
		{362, ActChooseMode, 9},
		{372, ActChooseX, 9},
		{377, ActChooseColor, 4},
		{382, ActAttackPlaneswalker, 4},
		{392, ActAssignMultipleBlockers, 9},
		{398, ActAltCast2, 0},
		{404, ActAltCast2, 6},
		{405, ActPayKicker, 0},
		{409, ActPayEscalate, 0},
		{414, ActCreateToken, 4},
		{417, ActPopulate, 0},
		{418, ActMechanic, 0},
		{429, ActMechanic, 11},
		{430, ActCounterSpell, 0},
		{434, ActStifle, 0},
		{435, ActFirstStrikeOrder, 0},
		{444, ActProtectPlaneswalker, 0},
		{447, ActCastFuse, 0},
		{448, ActAftermathCast, 0},
		{450, ActEquip, 0},
		{451, ActNoOp, 0},
		{455, ActMorph, 0},
		{457, ActClash, 0},
		{460, ActGrandeur, 0},
		{462, ActAttackBattle, 0},
		{466, ActAttackBattle, 4},
		{479, ActNoOp, 0},
	}
	for _, c := range cases {
		got, param := Decode(c.idx)
		if got != c.want || param != c.param {
			t.Errorf("index %d: got (%s, %d), want (%s, %d)", c.idx, got, param, c.want, c.param)
		}
	}
}

// Out-of-range indices decode to NO_OP instead of panicking.
func TestDecodeOutOfRange(t *testing.T) {
	for _, idx := range []int{-1, NumActions, 100000} {
		if got, _ := Decode(idx); got != ActNoOp {
			t.Errorf("Decode(%d) = %s, want NO_OP", idx, got)
		}
	}
}

// The alt-cast blocks enumerate the documented mechanics in order.
func TestAltCastBlocks(t *testing.T) {
	if len(altCastMechanics) != 19 {
		t.Fatalf("205-223 block must hold 19 mechanics, has %d", len(altCastMechanics))
	}
	if len(altCastMechanics2) != 7 {
		t.Fatalf("398-404 block must hold 7 mechanics, has %d", len(altCastMechanics2))
	}
	if len(mechanicActions) != 12 {
		t.Fatalf("418-429 block must hold 12 mechanics, has %d", len(mechanicActions))
	}
	if altCastMechanics2[0] != MechFlashback || altCastMechanics2[6] != MechDelve {
		t.Fatal("398-404 order must be Flashback..Delve")
	}
}
