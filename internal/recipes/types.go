package recipes

import "fmt"

const (
	// RecipeCount is the fixed number of recipes a generation must return.
	RecipeCount = 5

	maxSteps         = 5
	maxSubstitutions = 2
	maxReasons       = 2
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
)

// Substitution suggests a replacement for an ingredient the user is missing.
type Substitution struct {
	For string `json:"for"`
	Use string `json:"use"`
}

// Nutrition is a per-serving estimate. Nil pointers mean the model could not
// estimate the value.
type Nutrition struct {
	Kcal     *float64 `json:"kcal,omitempty"`
	ProteinG *float64 `json:"protein_g,omitempty"`
	CarbG    *float64 `json:"carb_g,omitempty"`
	FatG     *float64 `json:"fat_g,omitempty"`
}

// Recipe is one generated recipe, rendered in the requested output language.
type Recipe struct {
	Title         string         `json:"title"`
	TimeMinutes   int            `json:"time_minutes"`
	Difficulty    string         `json:"difficulty"`
	Method        string         `json:"method"`
	Ingredients   []string       `json:"ingredients"`
	Missing       []string       `json:"missing"`
	Substitutions []Substitution `json:"substitutions"`
	Steps         []string       `json:"steps"`
	Reasons       []string       `json:"reasons"`
	Nutrition     *Nutrition     `json:"nutrition_per_serving,omitempty"`
}

// RecipeSet is the full generation result for one filter.
type RecipeSet struct {
	Recipes []Recipe `json:"recipes"`
}

// Validate enforces the generation schema: exactly RecipeCount recipes, each
// with the required fields and within the per-field limits. Model output that
// fails here is discarded, never cached.
func (s *RecipeSet) Validate() error {
	if len(s.Recipes) != RecipeCount {
		return fmt.Errorf("expected %d recipes, got %d", RecipeCount, len(s.Recipes))
	}
	for i := range s.Recipes {
		if err := s.Recipes[i].validate(); err != nil {
			return fmt.Errorf("recipes[%d]: %w", i, err)
		}
	}
	return nil
}

func (r *Recipe) validate() error {
	if r.Title == "" {
		return fmt.Errorf("title is required")
	}
	if r.TimeMinutes <= 0 {
		return fmt.Errorf("time_minutes must be positive, got %d", r.TimeMinutes)
	}
	if r.Difficulty != DifficultyEasy && r.Difficulty != DifficultyMedium {
		return fmt.Errorf("invalid difficulty %q", r.Difficulty)
	}
	if r.Method == "" {
		return fmt.Errorf("method is required")
	}
	if len(r.Ingredients) == 0 {
		return fmt.Errorf("ingredients are required")
	}
	if len(r.Steps) == 0 {
		return fmt.Errorf("steps are required")
	}
	if len(r.Steps) > maxSteps {
		return fmt.Errorf("at most %d steps allowed, got %d", maxSteps, len(r.Steps))
	}
	if len(r.Substitutions) > maxSubstitutions {
		return fmt.Errorf("at most %d substitutions allowed, got %d", maxSubstitutions, len(r.Substitutions))
	}
	for i, sub := range r.Substitutions {
		if sub.For == "" || sub.Use == "" {
			return fmt.Errorf("substitutions[%d]: both for and use are required", i)
		}
	}
	if len(r.Reasons) > maxReasons {
		return fmt.Errorf("at most %d reasons allowed, got %d", maxReasons, len(r.Reasons))
	}
	return nil
}
