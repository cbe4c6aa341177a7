package section

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/deckreport/internal/slides"
	"github.com/dgallion1/deckreport/internal/synth"
)

// recordingSynth returns "text-N" for the Nth call and remembers what each
// call saw.
type recordingSynth struct {
	requests []synth.Request
	bodies   [][]string
	failOn   int
}

func (r *recordingSynth) Synthesize(_ context.Context, req synth.Request) (string, error) {
	r.requests = append(r.requests, req)
	var seen []string
	for _, m := range req.Members {
		seen = append(seen, m.Body)
	}
	r.bodies = append(r.bodies, seen)
	if r.failOn > 0 && len(r.requests) == r.failOn {
		return "", &synth.Error{SectionKey: req.SectionKey, Err: errors.New("upstream 500")}
	}
	return fmt.Sprintf("text-%d", len(r.requests)), nil
}

func deck(n int) *slides.Store {
	recs := make([]slides.Record, n)
	for i := range recs {
		recs[i] = slides.Record{Title: fmt.Sprintf("Slide %d", i+1), Body: fmt.Sprintf("body %d", i+1)}
	}
	return slides.NewStore(recs)
}

func TestBuild_BasicSections(t *testing.T) {
	rs := &recordingSynth{}
	store := deck(5)
	rows := []Row{
		{Heading1: "Intro", Slides: "1-2"},
		{Heading2: "Detail", Slides: "3,5"},
	}

	rep, err := NewBuilder(rs, Options{}, nil).Build(context.Background(), rows, store, "Bridge survey")
	require.NoError(t, err)
	require.Len(t, rep.Sections, 2)

	assert.Equal(t, "Heading 1: Intro", rep.Sections[0].Key)
	assert.Equal(t, 1, rep.Sections[0].Level)
	assert.Equal(t, "Heading 2: Detail", rep.Sections[1].Key)
	assert.Equal(t, 2, rep.Sections[1].Level)
	assert.Equal(t, "Bridge survey", rep.Context)

	var got []int
	for _, m := range rep.Sections[1].Members {
		got = append(got, m.Index)
	}
	assert.Equal(t, []int{3, 5}, got)

	assert.Len(t, rs.requests, 2)
	assert.Equal(t, "Bridge survey", rs.requests[0].Context)
	assert.Equal(t, "Heading 1: Intro", rs.requests[0].SectionKey)

	assert.Equal(t, "text-1", store.Body(1))
	assert.Equal(t, "text-1", store.Body(2))
	assert.Equal(t, "text-2", store.Body(3))
	assert.Equal(t, "body 4", store.Body(4))
	assert.Equal(t, "text-2", store.Body(5))
}

func TestBuild_Heading1WinsOverHeading2(t *testing.T) {
	rep, err := NewBuilder(&recordingSynth{}, Options{}, nil).Build(context.Background(),
		[]Row{{Heading1: " Intro ", Heading2: "Ignored", Slides: "1"}}, deck(2), "ctx")
	require.NoError(t, err)
	require.Len(t, rep.Sections, 1)
	assert.Equal(t, "Heading 1: Intro", rep.Sections[0].Key)
	assert.Equal(t, "Intro", rep.Sections[0].Heading)
}

func TestBuild_SkipsRowsWithoutSlidesOrHeading(t *testing.T) {
	rs := &recordingSynth{}
	rows := []Row{
		{Heading1: "Empty", Slides: "   "},
		{Slides: "1"},
		{Heading2: "Kept", Slides: "2"},
	}
	rep, err := NewBuilder(rs, Options{}, nil).Build(context.Background(), rows, deck(2), "ctx")
	require.NoError(t, err)
	require.Len(t, rep.Sections, 1)
	assert.Equal(t, "Heading 2: Kept", rep.Sections[0].Key)
	assert.Equal(t, 2, rep.Sections[0].Row)
	assert.Len(t, rs.requests, 1)
}

func TestBuild_OutOfRangeFailsBeforeSynthesis(t *testing.T) {
	tests := []struct {
		name string
		spec string
		idx  int
	}{
		{"single past end", "4", 4},
		{"range past end", "2-9", 4},
		{"zero", "0", 0},
		{"max int range", "1-9223372036854775807", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := &recordingSynth{}
			store := deck(3)
			rows := []Row{
				{Heading1: "Good", Slides: "1"},
				{Heading1: "Bad", Slides: tt.spec},
			}
			rep, err := NewBuilder(rs, Options{}, nil).Build(context.Background(), rows, store, "ctx")
			assert.Nil(t, rep)

			var ie *IndexError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, 1, ie.Row)
			assert.Equal(t, tt.idx, ie.Index)
			assert.Equal(t, 3, ie.Count)

			assert.Empty(t, rs.requests)
			assert.Equal(t, "body 1", store.Body(1))
		})
	}
}

func TestBuild_MalformedTokensIgnored(t *testing.T) {
	rep, err := NewBuilder(&recordingSynth{}, Options{}, nil).Build(context.Background(),
		[]Row{{Heading1: "A", Slides: "abc, 2 ,x-y"}}, deck(3), "ctx")
	require.NoError(t, err)
	require.Len(t, rep.Sections[0].Members, 1)
	assert.Equal(t, 2, rep.Sections[0].Members[0].Index)
}

func TestBuild_SharedSlideLastWriteWins(t *testing.T) {
	rs := &recordingSynth{}
	store := deck(4)
	rows := []Row{
		{Heading1: "First", Slides: "1-3"},
		{Heading2: "Second", Slides: "3,4"},
	}
	_, err := NewBuilder(rs, Options{}, nil).Build(context.Background(), rows, store, "ctx")
	require.NoError(t, err)

	// Second synthesis saw the first row's text for slide 3.
	assert.Equal(t, []string{"text-1", "body 4"}, rs.bodies[1])
	assert.Equal(t, "text-1", store.Body(2))
	assert.Equal(t, "text-2", store.Body(3))
	assert.Equal(t, "text-2", store.Body(4))
}

func TestBuild_PreserveBodies(t *testing.T) {
	rs := &recordingSynth{}
	store := deck(3)
	rows := []Row{
		{Heading1: "First", Slides: "1-2"},
		{Heading1: "Second", Slides: "2-3"},
	}
	rep, err := NewBuilder(rs, Options{PreserveBodies: true}, nil).Build(context.Background(), rows, store, "ctx")
	require.NoError(t, err)

	assert.Equal(t, []string{"body 2", "body 3"}, rs.bodies[1])
	for i := 1; i <= 3; i++ {
		assert.Equal(t, fmt.Sprintf("body %d", i), store.Body(i))
	}
	for _, sec := range rep.Sections {
		assert.True(t, sec.Detached)
	}
	assert.Equal(t, "text-1", rep.Sections[0].Text)
	assert.Equal(t, "text-2", rep.Sections[1].Text)
}

func TestBuild_DuplicatePolicy(t *testing.T) {
	rows := []Row{
		{Heading1: "Same", Slides: "1"},
		{Heading1: "Same", Slides: "2"},
	}

	rep, err := NewBuilder(&recordingSynth{}, Options{}, nil).Build(context.Background(), rows, deck(2), "ctx")
	require.NoError(t, err)
	assert.Len(t, rep.Sections, 2)

	rs := &recordingSynth{}
	_, err = NewBuilder(rs, Options{Duplicates: DuplicatesError}, nil).Build(context.Background(), rows, deck(2), "ctx")
	require.ErrorIs(t, err, ErrDuplicateSection)
	assert.Empty(t, rs.requests)
}

func TestBuild_SynthesisFailureAborts(t *testing.T) {
	rs := &recordingSynth{failOn: 2}
	rows := []Row{
		{Heading1: "A", Slides: "1"},
		{Heading1: "B", Slides: "2"},
		{Heading1: "C", Slides: "3"},
	}
	rep, err := NewBuilder(rs, Options{}, nil).Build(context.Background(), rows, deck(3), "ctx")
	assert.Nil(t, rep)
	assert.True(t, synth.IsSynthesisError(err))
	assert.Len(t, rs.requests, 2)
}

func TestBuild_SynthesisFailureRestoresBodies(t *testing.T) {
	rs := &recordingSynth{failOn: 3}
	store := deck(4)
	rows := []Row{
		{Heading1: "A", Slides: "1-2"},
		{Heading2: "B", Slides: "2-3"},
		{Heading1: "C", Slides: "4"},
	}
	_, err := NewBuilder(rs, Options{}, nil).Build(context.Background(), rows, store, "ctx")
	require.Error(t, err)

	// Row B still saw row A's text while the run was live.
	assert.Equal(t, []string{"text-1", "body 3"}, rs.bodies[1])
	for i := 1; i <= 4; i++ {
		assert.Equal(t, fmt.Sprintf("body %d", i), store.Body(i))
	}

	// A retry starts from the extracted bodies.
	retry := &recordingSynth{}
	_, err = NewBuilder(retry, Options{}, nil).Build(context.Background(), rows, store, "ctx")
	require.NoError(t, err)
	assert.Equal(t, []string{"body 1", "body 2"}, retry.bodies[0])
}

func TestBuild_ReentrantReadsCurrentBodies(t *testing.T) {
	rs := &recordingSynth{}
	store := deck(2)
	rows := []Row{{Heading1: "A", Slides: "1-2"}}
	b := NewBuilder(rs, Options{}, nil)

	_, err := b.Build(context.Background(), rows, store, "ctx")
	require.NoError(t, err)
	_, err = b.Build(context.Background(), rows, store, "ctx")
	require.NoError(t, err)

	assert.Equal(t, []string{"text-1", "text-1"}, rs.bodies[1])
	assert.Equal(t, "text-2", store.Body(1))
}

func TestBuilder_WithExemplar(t *testing.T) {
	rs := &recordingSynth{}
	b := NewBuilder(rs, Options{}, nil)
	_, err := b.WithExemplar("Example prose.").Build(context.Background(),
		[]Row{{Heading2: "A", Slides: "1"}}, deck(1), "ctx")
	require.NoError(t, err)
	assert.Equal(t, "Example prose.", rs.requests[0].Exemplar)
	assert.Equal(t, "", b.opts.Exemplar)
}

func TestRow_Heading(t *testing.T) {
	_, _, ok := Row{Heading1: " ", Heading2: "\t"}.Heading()
	assert.False(t, ok)
	level, h, ok := Row{Heading2: " Sub "}.Heading()
	assert.True(t, ok)
	assert.Equal(t, 2, level)
	assert.Equal(t, "Sub", h)
	assert.False(t, strings.Contains(h, " "))
}
