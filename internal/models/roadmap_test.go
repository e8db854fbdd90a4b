package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func samplePhases() []Phase {
	return []Phase{
		{
			Title: "Foundations", Duration: "4 weeks", Goal: "Learn the basics",
			Technologies: []Item{{Title: "HTML"}, {Title: "CSS"}},
			Resources:    []Item{{Title: "MDN", URL: "https://developer.mozilla.org"}},
		},
		{
			Title: "Frameworks", Duration: "6 weeks", Goal: "Build apps",
			Technologies: []Item{{Title: "React"}},
			Resources:    []Item{},
		},
	}
}

func TestToggleFlipsAndRestores(t *testing.T) {
	r := Roadmap{Phases: samplePhases()}
	ref := ItemRef{Phase: 0, Kind: KindTechnologies, Index: 1}

	completed, err := r.Toggle(ref)
	require.NoError(t, err)
	assert.True(t, completed)
	assert.True(t, r.Phases[0].Technologies[1].Completed)

	completed, err = r.Toggle(ref)
	require.NoError(t, err)
	assert.False(t, completed)
	assert.Equal(t, samplePhases(), r.Phases)
}

func TestToggleRejectsBadRefs(t *testing.T) {
	r := Roadmap{Phases: samplePhases()}
	refs := []ItemRef{
		{Phase: -1, Kind: KindTechnologies},
		{Phase: 2, Kind: KindTechnologies},
		{Phase: 0, Kind: "projects"},
		{Phase: 0, Kind: KindResources, Index: 1},
		{Phase: 1, Kind: KindResources, Index: 0},
	}
	for _, ref := range refs {
		_, err := r.Toggle(ref)
		assert.True(t, errors.Is(err, ErrInvalidItemRef), "ref %+v", ref)
	}
}

func TestProgressAndMilestones(t *testing.T) {
	r := Roadmap{Phases: samplePhases()}
	assert.Zero(t, r.Progress())
	assert.Zero(t, r.Milestones())

	_, _ = r.Toggle(ItemRef{Phase: 1, Kind: KindTechnologies, Index: 0})
	assert.Equal(t, 100.0, r.Phases[1].Progress())
	assert.Equal(t, 1, r.Milestones())
	assert.Equal(t, 25.0, r.Progress())

	overall, milestones := Summarize([]Roadmap{r, {Phases: samplePhases()}})
	assert.Equal(t, 13, overall) // 1 of 8
	assert.Equal(t, 1, milestones)
}

func TestEmptyPhaseIsNotAMilestone(t *testing.T) {
	r := Roadmap{Phases: []Phase{{Title: "Empty"}}}
	assert.Zero(t, r.Milestones())
	assert.Zero(t, r.Progress())
}

func TestResetProgressDoesNotAlias(t *testing.T) {
	in := samplePhases()
	in[0].Technologies[0].Completed = true
	out := ResetProgress(in)

	assert.False(t, out[0].Technologies[0].Completed)
	assert.True(t, in[0].Technologies[0].Completed)
	out[0].Technologies[1].Title = "changed"
	assert.Equal(t, "CSS", in[0].Technologies[1].Title)
}

func TestClonePhasesFillsNilLists(t *testing.T) {
	out := ClonePhases([]Phase{{Title: "x"}})
	assert.NotNil(t, out[0].Technologies)
	assert.NotNil(t, out[0].Resources)
	assert.Nil(t, ClonePhases(nil))
}

func TestCarryProgressMatchesByKindAndTitle(t *testing.T) {
	prev := samplePhases()
	prev[0].Technologies[0].Completed = true // HTML
	prev[0].Resources[0].Completed = true    // MDN

	next := []Phase{{
		Title:        "Web basics",
		Technologies: []Item{{Title: " html "}, {Title: "JavaScript"}, {Title: "MDN"}},
		Resources:    []Item{{Title: "mdn"}},
	}}
	out := CarryProgress(prev, next)

	assert.True(t, out[0].Technologies[0].Completed)
	assert.False(t, out[0].Technologies[1].Completed)
	assert.False(t, out[0].Technologies[2].Completed, "kind must match too")
	assert.True(t, out[0].Resources[0].Completed)
}

func TestRoadmapDescription(t *testing.T) {
	assert.Equal(t, "A personalized roadmap for a Beginner Frontend Developer.",
		RoadmapDescription("Beginner", "Frontend Developer"))
}

func TestToggleTwiceIsIdentityProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		phases := rapid.SliceOfN(rapid.Custom(func(t *rapid.T) Phase {
			items := func(label string) []Item {
				return rapid.SliceOfN(rapid.Custom(func(t *rapid.T) Item {
					return Item{Title: rapid.StringMatching(`[a-z]{1,8}`).Draw(t, label), Completed: rapid.Bool().Draw(t, label+"Done")}
				}), 0, 4).Draw(t, label+"s")
			}
			return Phase{Title: "p", Technologies: items("tech"), Resources: items("res")}
		}), 1, 4).Draw(t, "phases")

		r := Roadmap{Phases: ClonePhases(phases)}
		before := ClonePhases(r.Phases)
		_, total := r.Counts()
		if total == 0 {
			return
		}
		phase := rapid.IntRange(0, len(r.Phases)-1).Draw(t, "phase")
		kind := rapid.SampledFrom([]string{KindTechnologies, KindResources}).Draw(t, "kind")
		list, _ := r.Phases[phase].items(kind)
		if len(list) == 0 {
			return
		}
		ref := ItemRef{Phase: phase, Kind: kind, Index: rapid.IntRange(0, len(list)-1).Draw(t, "index")}

		doneBefore, _ := r.Counts()
		first, err := r.Toggle(ref)
		if err != nil {
			t.Fatalf("toggle: %v", err)
		}
		doneAfter, _ := r.Counts()
		if first && doneAfter != doneBefore+1 || !first && doneAfter != doneBefore-1 {
			t.Fatalf("completed count moved from %d to %d", doneBefore, doneAfter)
		}
		if _, err := r.Toggle(ref); err != nil {
			t.Fatalf("toggle: %v", err)
		}
		if !assert.ObjectsAreEqual(before, r.Phases) {
			t.Fatalf("toggling twice changed the roadmap")
		}
		if p := r.Progress(); p < 0 || p > 100 {
			t.Fatalf("progress out of range: %v", p)
		}
	})
}
