package classify

import (
	"testing"

	"goalwire/bot/internal/models"
)

func testClassifier() *Classifier {
	return New([]string{"realmadrid.com", "nba.com"})
}

func TestSportHintWins(t *testing.T) {
	c := testClassifier()
	// Text screams basketball but the hint is authoritative.
	combined := "nba lakers lebron triple baloncesto"
	if got := c.Sport(SportTennis, combined); got != SportTennis {
		t.Errorf("Sport with hint = %q, want tennis", got)
	}
}

func TestSportKeywordFallback(t *testing.T) {
	c := testClassifier()

	tests := []struct {
		combined string
		want     string
	}{
		{"lebron anota triple decisivo para los lakers", SportNBA},
		{"alcaraz gana en wimbledon ante djokovic", SportTennis},
		{"el real madrid golea en laliga", SportFootball},
		{"noticia generica sin deporte claro", SportFootball},
	}
	for _, tt := range tests {
		if got := c.Sport("", tt.combined); got != tt.want {
			t.Errorf("Sport(%q) = %q, want %q", tt.combined, got, tt.want)
		}
	}
}

func TestCategoryOverrides(t *testing.T) {
	c := testClassifier()

	title := "última hora oficial del club"
	if got := c.Category(title, title); got != CategoryBreaking {
		t.Errorf("two breaking keywords should force breaking, got %q", got)
	}

	title = "según la prensa podría salir en enero"
	if got := c.Category(title, title); got != CategoryRumor {
		t.Errorf("two rumor keywords should force rumor, got %q", got)
	}

	title = "fichaje y traspaso en negociación"
	if got := c.Category(title, title); got != CategoryTransfer {
		t.Errorf("transfer wording should force transfer, got %q", got)
	}
}

func TestCategoryScoredFallback(t *testing.T) {
	c := testClassifier()

	title := "parte médico del delantero"
	combined := title + " lesión muscular confirmada por el club"
	if got := c.Category(title, combined); got != CategoryInjury {
		t.Errorf("Category = %q, want injury", got)
	}

	if got := c.Category("saludo del presidente", "saludo del presidente"); got != CategoryDefault {
		t.Errorf("no keywords should yield default, got %q", got)
	}
}

func TestStatus(t *testing.T) {
	c := testClassifier()

	if got := c.Status("realmadrid.com", "cualquier texto"); got != models.StatusConfirmed {
		t.Errorf("official domain should confirm, got %q", got)
	}
	if got := c.Status("marca.com", "siguelo en directo ahora"); got != models.StatusDeveloping {
		t.Errorf("live wording should be developing, got %q", got)
	}
	if got := c.Status("marca.com", "acuerdo cerrado y firma esta semana"); got != models.StatusConfirmed {
		t.Errorf("confirmation wording should confirm, got %q", got)
	}
	if got := c.Status("marca.com", "el delantero gusta en inglaterra"); got != models.StatusRumor {
		t.Errorf("plain story should stay rumor, got %q", got)
	}
}

func TestClassifyFillsItem(t *testing.T) {
	c := testClassifier()
	item := models.CandidateItem{
		Title:           "OFICIAL: fichaje cerrado del lateral",
		Summary:         "El club anuncia el traspaso con contrato hasta 2030",
		SourceDomain:    "marca.com",
		SourceSportHint: "football_eu",
	}

	c.Classify(&item)

	if item.Sport != SportFootball {
		t.Errorf("Sport = %q", item.Sport)
	}
	if item.Category == "" || item.Category == CategoryDefault {
		t.Errorf("Category not assigned, got %q", item.Category)
	}
	if item.Status != models.StatusConfirmed {
		t.Errorf("Status = %q, want CONFIRMED", item.Status)
	}
}
