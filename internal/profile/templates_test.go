package profile

import (
	"testing"

	"github.com/chaz8081/micropad/internal/action"
)

func TestDefaultsLayout(t *testing.T) {
	defs := Defaults()
	if len(defs) != 4 {
		t.Fatalf("len(Defaults()) = %d, want 4", len(defs))
	}
	for i, p := range defs {
		if p.ID != i {
			t.Errorf("Defaults()[%d].ID = %d", i, p.ID)
		}
		last := p.Keys[NumKeys-1].Action
		sw, isSwitch := last.(action.ProfileSwitch)
		if i == 0 {
			if isSwitch {
				t.Error("General key 11 should not switch profiles")
			}
			continue
		}
		if !isSwitch || sw.ProfileID != 0 {
			t.Errorf("%s key 11 = %#v, want switch to 0", p.Name, last)
		}
	}
}

func TestMediaReusesGeneralEncoders(t *testing.T) {
	general := General()
	media := Media(general)
	if media.Encoders != general.Encoders {
		t.Error("Media encoders differ from General")
	}
}
