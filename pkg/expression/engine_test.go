package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateBool(t *testing.T) {
	engine := NewEngine()

	env := map[string]interface{}{
		"country": "USD",
		"title":   "Core CPI m/m",
		"impact":  "High",
	}

	result, err := engine.EvaluateBool(`country == "USD" && impact == "High"`, env)
	assert.NoError(t, err)
	assert.True(t, result)

	result, err = engine.EvaluateBool(`country == "EUR"`, env)
	assert.NoError(t, err)
	assert.False(t, result)
}

func TestEvaluateBoolRejectsNonPredicate(t *testing.T) {
	engine := NewEngine()

	_, err := engine.EvaluateBool(`title`, map[string]interface{}{"title": "GDP q/q"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "did not evaluate to a boolean")
}

func TestContainsIsCaseInsensitive(t *testing.T) {
	engine := NewEngine()

	env := map[string]interface{}{"title": "ISM Manufacturing PMI"}

	result, err := engine.EvaluateBool(`CONTAINS(title, "pmi")`, env)
	assert.NoError(t, err)
	assert.True(t, result)

	result, err = engine.EvaluateBool(`CONTAINS(title, "JOLTS")`, env)
	assert.NoError(t, err)
	assert.False(t, result)
}

func TestMatchesAny(t *testing.T) {
	engine := NewEngine()

	env := map[string]interface{}{
		"title":  "Non-Farm Employment Change",
		"topics": []string{"CPI", "Non-Farm Employment Change", "FOMC"},
	}

	result, err := engine.EvaluateBool(`MATCHES_ANY(title, topics)`, env)
	assert.NoError(t, err)
	assert.True(t, result)

	// Literal list form
	result, err = engine.EvaluateBool(`MATCHES_ANY(title, ["GDP", "Retail Sales"])`, env)
	assert.NoError(t, err)
	assert.False(t, result)
}

func TestProgramCacheReuse(t *testing.T) {
	engine := NewEngine()
	env := map[string]interface{}{"country": "USD"}

	_, err := engine.EvaluateBool(`country == "USD"`, env)
	assert.NoError(t, err)

	engine.mu.RLock()
	cached := len(engine.programCache)
	engine.mu.RUnlock()
	assert.Equal(t, 1, cached)

	// Second evaluation hits the cache
	result, err := engine.EvaluateBool(`country == "USD"`, env)
	assert.NoError(t, err)
	assert.True(t, result)
}

func TestRegisterFunctionClearsCache(t *testing.T) {
	engine := NewEngine()
	env := map[string]interface{}{"country": "USD"}

	_, err := engine.EvaluateBool(`country == "USD"`, env)
	assert.NoError(t, err)

	engine.RegisterFunction("ALWAYS", func(params ...interface{}) (interface{}, error) {
		return true, nil
	})

	result, err := engine.EvaluateBool(`ALWAYS()`, env)
	assert.NoError(t, err)
	assert.True(t, result)
}

func TestValidate(t *testing.T) {
	engine := NewEngine()
	env := map[string]interface{}{"country": "USD"}

	assert.NoError(t, engine.Validate(`country == "USD"`, env))
	assert.Error(t, engine.Validate(`country ==`, env))
}
