package listkeys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tasksTree(n int) map[string]any {
	items := make([]any, n)
	for i := range items {
		items[i] = "task"
	}
	return map[string]any{"tasks": items}
}

func TestDefaultsAreDeterministic(t *testing.T) {
	tree := tasksTree(2)
	keys := Defaults("0", tree, "tasks")
	assert.Equal(t, []string{"0-tasks[0]", "0-tasks[1]"}, keys)
	assert.Equal(t, keys, Defaults("0", tree, "tasks"))
	assert.Empty(t, Defaults("0", tree, "missing"))
	assert.Empty(t, Defaults("0", map[string]any{"tasks": "scalar"}, "tasks"))
}

func TestCurrentFallsBackWhenLengthDrifts(t *testing.T) {
	m := Map{"tasks": {"a", "b"}}
	assert.Equal(t, []string{"a", "b"}, Current(m, "0", tasksTree(2), "tasks"))
	assert.Equal(t, []string{"0-tasks[0]", "0-tasks[1]", "0-tasks[2]"}, Current(m, "0", tasksTree(3), "tasks"))
}

func TestReorderMatchesWorkedExample(t *testing.T) {
	m := Map{"tasks": {"1", "0-tasks[0]", "0-tasks[1]", "0"}}
	got := Reorder(m, "0", tasksTree(4), "tasks", 3, 1)
	assert.Equal(t, []string{"1", "0", "0-tasks[0]", "0-tasks[1]"}, got["tasks"])
	assert.Equal(t, []string{"1", "0-tasks[0]", "0-tasks[1]", "0"}, m["tasks"], "input map untouched")
}

func TestReorderNoOpKeepsMap(t *testing.T) {
	m := Map{"tasks": {"a", "b"}}
	got := Reorder(m, "0", tasksTree(2), "tasks", 1, 1)
	assert.Equal(t, m, got)
	got = Reorder(m, "0", tasksTree(2), "tasks", 5, 0)
	assert.Equal(t, m, got)
}

func TestInsertSplicesNewKey(t *testing.T) {
	got := Insert(Map{}, "0", tasksTree(2), "tasks", 2, "new")
	assert.Equal(t, []string{"0-tasks[0]", "0-tasks[1]", "new"}, got["tasks"])

	got = Insert(got, "0", tasksTree(3), "tasks", 0, "first")
	assert.Equal(t, []string{"first", "0-tasks[0]", "0-tasks[1]", "new"}, got["tasks"])

	got = Insert(Map{}, "0", map[string]any{}, "tags", 9, "only")
	assert.Equal(t, []string{"only"}, got["tags"], "index clamps to the end")
}

func TestInsertMovesNestedListKeys(t *testing.T) {
	m := Map{
		"tasks":             {"a", "b"},
		"tasks[1].subtasks": {"s1"},
		"tasks[0].subtasks": {"s0"},
		"other":             {"x"},
	}
	got := Insert(m, "0", tasksTree(2), "tasks", 1, "new")
	assert.Equal(t, []string{"a", "new", "b"}, got["tasks"])
	assert.Equal(t, []string{"s0"}, got["tasks[0].subtasks"])
	assert.Equal(t, []string{"s1"}, got["tasks[2].subtasks"])
	assert.NotContains(t, got, "tasks[1].subtasks")
	assert.Equal(t, []string{"x"}, got["other"])
}

func TestRemoveDropsKeyAndNestedEntries(t *testing.T) {
	m := Map{
		"tasks":             {"a", "b", "c"},
		"tasks[1].subtasks": {"s1"},
		"tasks[2].subtasks": {"s2"},
	}
	got := Remove(m, "0", tasksTree(3), "tasks", 1)
	assert.Equal(t, []string{"a", "c"}, got["tasks"])
	assert.Equal(t, []string{"s2"}, got["tasks[1].subtasks"])
	assert.NotContains(t, got, "tasks[2].subtasks")

	same := Remove(m, "0", tasksTree(3), "tasks", 7)
	assert.Equal(t, m, same, "out of range remove is a no-op")
}

func TestIndexRemap(t *testing.T) {
	remap := IndexRemap("tasks", RemoveMapper(1))

	cases := []struct {
		in   string
		want string
		keep bool
	}{
		{"tasks", "tasks", true},
		{"tasks[0]", "tasks[0]", true},
		{"tasks[1]", "", false},
		{"tasks[1].title", "", false},
		{"tasks[2]", "tasks[1]", true},
		{"tasks[2].title", "tasks[1].title", true},
		{"tasksx[2]", "tasksx[2]", true},
		{"title", "title", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, keep := remap(tc.in)
		assert.Equalf(t, tc.keep, keep, "keep for %q", tc.in)
		if tc.keep {
			assert.Equalf(t, tc.want, got, "remap of %q", tc.in)
		}
	}
}

func TestMappers(t *testing.T) {
	insert := InsertMapper(1)
	for in, want := range map[int]int{0: 0, 1: 2, 2: 3} {
		got, ok := insert(in)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	reorder := ReorderMapper(3, 1)
	for in, want := range map[int]int{0: 0, 1: 2, 2: 3, 3: 1, 4: 4} {
		got, ok := reorder(in)
		require.True(t, ok)
		assert.Equalf(t, want, got, "reorder 3->1 of %d", in)
	}

	forward := ReorderMapper(0, 2)
	for in, want := range map[int]int{0: 2, 1: 0, 2: 1, 3: 3} {
		got, _ := forward(in)
		assert.Equalf(t, want, got, "reorder 0->2 of %d", in)
	}
}

func TestRemapPathsInsertShiftsTouched(t *testing.T) {
	touched := []string{"", "title", "tasks[0]", "tasks[1]", "tasks[2]"}
	got := RemapPaths(touched, IndexRemap("tasks", InsertMapper(0)))
	assert.Equal(t, []string{"", "title", "tasks[1]", "tasks[2]", "tasks[3]"}, got)
	assert.NotContains(t, got, "tasks[0]")
}

func TestRemapPathsKeepsIdentityWhenUnchanged(t *testing.T) {
	touched := []string{"title", "tasks"}
	got := RemapPaths(touched, IndexRemap("tasks", InsertMapper(0)))
	assert.Same(t, &touched[0], &got[0])
}

func TestRemapPathsDeduplicates(t *testing.T) {
	got := RemapPaths([]string{"a", "b"}, func(string) (string, bool) { return "a", true })
	assert.Equal(t, []string{"a"}, got)
}

func TestDropUnder(t *testing.T) {
	m := Map{"tasks": {"a"}, "tasks[0].subtasks": {"s"}, "tags": {"t"}}

	got := DropUnder(m, "tasks[0]")
	assert.Equal(t, Map{"tasks": {"a"}, "tags": {"t"}}, got)
	assert.Len(t, m, 3, "input map untouched")

	got = DropUnder(m, "profile")
	assert.Equal(t, m, got)

	assert.Empty(t, DropUnder(m, ""))
}

func TestSequenceGenerator(t *testing.T) {
	gen := NewSequence(5)
	assert.Equal(t, "5", gen.NewKey())
	assert.Equal(t, "6", gen.NewKey())

	var g Generator = UUIDGenerator{}
	assert.NotEqual(t, g.NewKey(), g.NewKey())

	g = GeneratorFunc(func() string { return "fixed" })
	assert.Equal(t, "fixed", g.NewKey())
}
