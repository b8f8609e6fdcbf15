package workflow

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testState struct {
	Values map[string]string
	Order  []string
}

type testUpdate struct {
	Set   map[string]string
	Stage string
}

func (u testUpdate) Fields() []string {
	fields := make([]string, 0, len(u.Set))
	for k := range u.Set {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

func (u testUpdate) Apply(s *testState) {
	values := make(map[string]string, len(s.Values)+len(u.Set))
	for k, v := range s.Values {
		values[k] = v
	}
	for k, v := range u.Set {
		values[k] = v
	}
	s.Values = values
	if u.Stage != "" {
		s.Order = append(append([]string(nil), s.Order...), u.Stage)
	}
}

func setter(stage, field, value string) NodeFunc[testState, testUpdate] {
	return func(ctx context.Context, s testState) (testUpdate, error) {
		return testUpdate{Set: map[string]string{field: value}, Stage: stage}, nil
	}
}

type recordingObserver struct {
	events []string
}

func (o *recordingObserver) StageStarted(_ context.Context, e Event) {
	o.events = append(o.events, "start:"+e.Stage)
}
func (o *recordingObserver) StageCompleted(_ context.Context, e Event) {
	o.events = append(o.events, "done:"+e.Stage)
}
func (o *recordingObserver) StageFailed(_ context.Context, e Event) {
	o.events = append(o.events, "fail:"+e.Stage)
}
func (o *recordingObserver) StageSuspended(_ context.Context, e Event) {
	o.events = append(o.events, "suspend:"+e.Stage)
}

func linearGraph(t *testing.T, names ...string) *Graph[testState, testUpdate] {
	t.Helper()
	g := NewGraph[testState, testUpdate]("test")
	for _, n := range names {
		require.NoError(t, g.AddNode(n, setter(n, n, n+"-value"), n))
	}
	for i := 1; i < len(names); i++ {
		require.NoError(t, g.AddEdge(names[i-1], names[i]))
	}
	return g
}

func TestCompile_TopologicalOrder(t *testing.T) {
	g := NewGraph[testState, testUpdate]("test")
	// declared out of dependency order
	require.NoError(t, g.AddNode("render", setter("render", "render", "x"), "render"))
	require.NoError(t, g.AddNode("read", setter("read", "read", "x"), "read"))
	require.NoError(t, g.AddNode("extract", setter("extract", "extract", "x"), "extract"))
	require.NoError(t, g.AddEdge("read", "extract"))
	require.NoError(t, g.AddEdge("extract", "render"))

	e, err := g.Compile()
	require.NoError(t, err)
	assert.Equal(t, []string{"read", "extract", "render"}, e.Stages())
}

func TestCompile_TieBreakByDeclarationOrder(t *testing.T) {
	g := NewGraph[testState, testUpdate]("test")
	for _, n := range []string{"root", "b", "a", "join"} {
		require.NoError(t, g.AddNode(n, setter(n, n, "x"), n))
	}
	require.NoError(t, g.AddEdge("root", "a"))
	require.NoError(t, g.AddEdge("root", "b"))
	require.NoError(t, g.AddEdge("a", "join"))
	require.NoError(t, g.AddEdge("b", "join"))

	e, err := g.Compile()
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "b", "a", "join"}, e.Stages())
}

func TestCompile_RejectsCycle(t *testing.T) {
	g := linearGraph(t, "a", "b", "c")
	require.NoError(t, g.AddEdge("c", "a"))

	_, err := g.Compile()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCycle)
}

func TestCompile_RejectsUnknownNode(t *testing.T) {
	g := linearGraph(t, "a")
	require.NoError(t, g.AddEdge("a", "missing"))

	_, err := g.Compile()
	var ge *GraphError
	require.ErrorAs(t, err, &ge)
	assert.Contains(t, ge.Error(), "missing")
}

func TestGraph_RejectsDuplicates(t *testing.T) {
	g := linearGraph(t, "a", "b")
	assert.Error(t, g.AddNode("a", setter("a", "a", "x")))
	assert.Error(t, g.AddEdge("a", "b"))
	assert.Error(t, g.AddNode("", setter("", "", "")))
	assert.Error(t, g.AddNode("nil", nil))
}

func TestCompile_EmptyGraph(t *testing.T) {
	_, err := NewGraph[testState, testUpdate]("empty").Compile()
	assert.Error(t, err)
}

func TestRun_MergesUpdatesInOrder(t *testing.T) {
	var seenByC map[string]string
	g := linearGraph(t, "a", "b")
	require.NoError(t, g.AddNode("c", func(ctx context.Context, s testState) (testUpdate, error) {
		seenByC = s.Values
		return testUpdate{Set: map[string]string{"c": "done"}, Stage: "c"}, nil
	}, "c"))
	require.NoError(t, g.AddEdge("b", "c"))

	obs := &recordingObserver{}
	e, err := g.Compile(WithObserver(obs))
	require.NoError(t, err)

	res, err := e.Run(context.Background(), testState{Values: map[string]string{"input": "in"}})
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, res.Status)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, []string{"a", "b", "c"}, res.Completed)
	assert.Equal(t, []string{"a", "b", "c"}, res.State.Order)
	assert.Equal(t, "in", res.State.Values["input"])
	assert.Equal(t, "done", res.State.Values["c"])
	assert.Equal(t, "a-value", seenByC["a"])
	assert.Equal(t, "b-value", seenByC["b"])
	assert.Equal(t, []string{"start:a", "done:a", "start:b", "done:b", "start:c", "done:c"}, obs.events)
}

func TestRun_FirstFailureHaltsLaterStages(t *testing.T) {
	cause := errors.New("model output could not be parsed")
	g := NewGraph[testState, testUpdate]("cv")
	require.NoError(t, g.AddNode("read", setter("read", "cv_text", "text"), "cv_text"))
	require.NoError(t, g.AddNode("extract", func(ctx context.Context, s testState) (testUpdate, error) {
		return testUpdate{}, cause
	}, "profile"))

	laterCalled := false
	require.NoError(t, g.AddNode("requirements", func(ctx context.Context, s testState) (testUpdate, error) {
		laterCalled = true
		return testUpdate{}, nil
	}, "requirements"))
	require.NoError(t, g.AddEdge("read", "extract"))
	require.NoError(t, g.AddEdge("extract", "requirements"))

	obs := &recordingObserver{}
	e, err := g.Compile(WithObserver(obs))
	require.NoError(t, err)

	res, err := e.Run(context.Background(), testState{})
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "extract", stageErr.Stage)
	assert.ErrorIs(t, err, cause)

	assert.False(t, laterCalled)
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, []string{"read"}, res.Completed)
	assert.Equal(t, "text", res.State.Values["cv_text"])
	assert.Equal(t, []string{"start:read", "done:read", "start:extract", "fail:extract"}, obs.events)
}

func TestRun_OwnershipViolationFails(t *testing.T) {
	g := NewGraph[testState, testUpdate]("test")
	require.NoError(t, g.AddNode("a", setter("a", "a", "x"), "a"))
	require.NoError(t, g.AddNode("b", setter("b", "a", "overwrite"), "b"))
	require.NoError(t, g.AddEdge("a", "b"))
	e, err := g.Compile()
	require.NoError(t, err)

	res, err := e.Run(context.Background(), testState{})
	require.Error(t, err)

	var owner *OwnershipError
	require.ErrorAs(t, err, &owner)
	assert.Equal(t, "b", owner.Stage)
	assert.Equal(t, "a", owner.Field)
	assert.Equal(t, "x", res.State.Values["a"])
}

func TestRun_CancelledContextStopsBeforeNextStage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	g := NewGraph[testState, testUpdate]("test")
	require.NoError(t, g.AddNode("a", func(ctx context.Context, s testState) (testUpdate, error) {
		cancel()
		return testUpdate{Set: map[string]string{"a": "x"}}, nil
	}, "a"))
	require.NoError(t, g.AddNode("b", setter("b", "b", "x"), "b"))
	require.NoError(t, g.AddEdge("a", "b"))
	e, err := g.Compile()
	require.NoError(t, err)

	res, err := e.Run(ctx, testState{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"a"}, res.Completed)
}

func TestRun_SuspendAndResume(t *testing.T) {
	calls := 0
	g := NewGraph[testState, testUpdate]("test")
	require.NoError(t, g.AddNode("ask", setter("ask", "question", "q?"), "question"))
	require.NoError(t, g.AddNode("verify", func(ctx context.Context, s testState) (testUpdate, error) {
		calls++
		if s.Values["answer"] == "" {
			return testUpdate{Set: map[string]string{"pending": "yes"}}, Suspend("awaiting answer")
		}
		return testUpdate{Set: map[string]string{"verified": s.Values["answer"], "pending": ""}}, nil
	}, "verified", "pending"))
	require.NoError(t, g.AddNode("render", setter("render", "output", "file"), "output"))
	require.NoError(t, g.AddEdge("ask", "verify"))
	require.NoError(t, g.AddEdge("verify", "render"))

	obs := &recordingObserver{}
	e, err := g.Compile(WithObserver(obs))
	require.NoError(t, err)

	res, err := e.Run(context.Background(), testState{})
	require.NoError(t, err)
	assert.Equal(t, StatusSuspended, res.Status)
	assert.Equal(t, "verify", res.NextStage)
	assert.Equal(t, "awaiting answer", res.SuspendReason)
	assert.Equal(t, []string{"ask"}, res.Completed)
	assert.Equal(t, "yes", res.State.Values["pending"])

	resumed, err := e.Resume(context.Background(), res, func(s *testState) {
		values := map[string]string{"answer": "Go"}
		for k, v := range s.Values {
			values[k] = v
		}
		s.Values = values
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, resumed.Status)
	assert.Equal(t, res.RunID, resumed.RunID)
	assert.Equal(t, []string{"ask", "verify", "render"}, resumed.Completed)
	assert.Equal(t, "Go", resumed.State.Values["verified"])
	assert.Equal(t, "file", resumed.State.Values["output"])
	assert.Equal(t, 2, calls)
	assert.Contains(t, obs.events, "suspend:verify")
}

func TestResume_RequiresSuspendedResult(t *testing.T) {
	e, err := linearGraph(t, "a").Compile()
	require.NoError(t, err)

	res, err := e.Run(context.Background(), testState{})
	require.NoError(t, err)

	_, err = e.Resume(context.Background(), res, nil)
	assert.Error(t, err)
	_, err = e.Resume(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestRun_PerRunObserverAndID(t *testing.T) {
	e, err := linearGraph(t, "a", "b").Compile()
	require.NoError(t, err)

	var statuses []Status
	fn := FuncObserver(func(ctx context.Context, status Status, ev Event) {
		statuses = append(statuses, status)
		assert.Equal(t, "fixed-id", ev.RunID)
		assert.Equal(t, 2, ev.Total)
	})

	res, err := e.Run(context.Background(), testState{}, WithRunID("fixed-id"), WithRunObserver(fn))
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", res.RunID)
	assert.Equal(t, []Status{StatusRunning, StatusCompleted, StatusRunning, StatusCompleted}, statuses)

	// a second run does not see the first run's observer
	statuses = nil
	_, err = e.Run(context.Background(), testState{})
	require.NoError(t, err)
	assert.Empty(t, statuses)
}
