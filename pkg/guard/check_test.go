package guard_test

import (
	"errors"
	"testing"

	"github.com/aretw0/docflows/pkg/domain"
	"github.com/aretw0/docflows/pkg/guard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingGuard records how many times it was evaluated.
type countingGuard struct {
	name   string
	result bool
	err    error
	calls  int
}

func (g *countingGuard) Name() string    { return g.name }
func (g *countingGuard) Message() string { return g.name + " failed" }
func (g *countingGuard) Evaluate(map[string]any) (bool, error) {
	g.calls++
	return g.result, g.err
}

func TestCheck_AllOf(t *testing.T) {
	first := &countingGuard{name: "first", result: true}
	second := &countingGuard{name: "second", result: false}
	third := &countingGuard{name: "third", result: false}
	set := guard.MustSet(first, second, third)

	err := guard.Check(set, "finish", domain.AllOf("first", "second", "third"), nil)

	var failed *domain.GuardFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, "second", failed.Guard)
	assert.Equal(t, "finish", failed.Transition)
	assert.Equal(t, "second failed", err.Error())

	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Equal(t, 0, third.calls, "all-of stops at the first failing check")
}

func TestCheck_AllOfPasses(t *testing.T) {
	set := guard.MustSet(
		guard.MustNew("has_content", `doc.content != nil and len(doc.content) > 0`, "Content is empty"),
		guard.MustNew("title_size", `len(doc.title) >= 8`, "Title is too short"),
	)
	env := doc(map[string]any{"title": "Report_1", "content": "body"})

	assert.NoError(t, guard.Check(set, "finish", domain.AllOf("has_content", "title_size"), env))
}

func TestCheck_AnyOf(t *testing.T) {
	t.Run("One Passes", func(t *testing.T) {
		a := &countingGuard{name: "a", result: false}
		b := &countingGuard{name: "b", result: true}
		c := &countingGuard{name: "c", result: false}
		set := guard.MustSet(a, b, c)

		require.NoError(t, guard.Check(set, "prepare", domain.AnyOf("a", "b", "c"), nil))
		assert.Equal(t, 1, c.calls, "any-of evaluates every check")
	})

	t.Run("None Passes", func(t *testing.T) {
		set := guard.MustSet(
			&countingGuard{name: "a"},
			&countingGuard{name: "b"},
		)

		err := guard.Check(set, "prepare", domain.AnyOf("a", "b"), nil)

		var all *domain.AllGuardsFailedError
		require.ErrorAs(t, err, &all)
		assert.Equal(t, "prepare", all.Transition)
		assert.Equal(t, []string{"a", "b"}, all.Guards)
		assert.Equal(t, []domain.GuardFailure{
			{Guard: "a", Message: "a failed"},
			{Guard: "b", Message: "b failed"},
		}, all.Failures)
		assert.Equal(t, "all checks failed for prepare", err.Error())
	})
}

func TestCheck_EvaluationErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	for _, policy := range []domain.GuardPolicy{
		domain.AllOf("broken", "ok"),
		domain.AnyOf("ok", "broken"),
	} {
		t.Run(string(policy.Mode), func(t *testing.T) {
			set := guard.MustSet(
				&countingGuard{name: "ok", result: true},
				&countingGuard{name: "broken", err: boom},
			)

			err := guard.Check(set, "go", policy, nil)

			var evalErr *domain.GuardEvaluationError
			require.ErrorAs(t, err, &evalErr)
			assert.Equal(t, "broken", evalErr.Guard)
			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestCheck_UnknownGuard(t *testing.T) {
	set := guard.MustSet(&countingGuard{name: "a", result: true})

	err := guard.Check(set, "go", domain.AllOf("a", "missing"), nil)

	var unknown *domain.UnknownGuardError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "missing", unknown.Name)
}

func TestCheck_EmptyPolicy(t *testing.T) {
	assert.NoError(t, guard.Check(nil, "go", domain.GuardPolicy{}, nil))
}
