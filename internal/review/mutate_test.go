package review

import (
	"testing"
	"time"

	"github.com/alexanderramin/procreview/internal/domain"
	"github.com/alexanderramin/procreview/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetTaskStatus_DoesNotPropagate(t *testing.T) {
	doc := testutil.NewTestDocument()

	got, err := SetTaskStatus(doc, "t-load", domain.StatusApproved, testStamp)
	require.NoError(t, err)

	task, sub, proc, ok := got.FindTask("t-load")
	require.True(t, ok)
	assert.Equal(t, domain.StatusApproved, task.Status)
	assert.Equal(t, "qa-lead", task.LastUpdatedBy)
	require.NotNil(t, task.LastUpdatedAt)
	assert.Equal(t, testutil.FixedTime, *task.LastUpdatedAt)

	assert.Equal(t, domain.StatusPending, sub.Status, "parent subprocess must not change")
	assert.Empty(t, sub.LastUpdatedBy)
	assert.Equal(t, domain.StatusPending, proc.Status, "process must not change")
	assert.Equal(t, doc.Version+1, got.Version)
}

func TestSetTaskStatus_LeavesPreviousVersionIntact(t *testing.T) {
	doc := testutil.NewTestDocument()

	_, err := SetTaskStatus(doc, "t-load", domain.StatusNeedsFix, testStamp)
	require.NoError(t, err)

	task, _, _, _ := doc.FindTask("t-load")
	assert.Equal(t, domain.StatusPending, task.Status)
	assert.Nil(t, task.LastUpdatedAt)
}

func TestSetTaskStatus_Errors(t *testing.T) {
	doc := testutil.NewTestDocument()

	_, err := SetTaskStatus(doc, "missing", domain.StatusApproved, testStamp)
	assert.ErrorIs(t, err, ErrNodeNotFound)

	_, err = SetTaskStatus(doc, "t-load", domain.Status("Done"), testStamp)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestSetSubprocessStatus(t *testing.T) {
	doc := testutil.NewTestDocument()

	got, err := SetSubprocessStatus(doc, "s-dry", domain.StatusNeedsFix, testStamp)
	require.NoError(t, err)

	sub, proc, ok := got.FindSubprocess("s-dry")
	require.True(t, ok)
	assert.Equal(t, domain.StatusNeedsFix, sub.Status)
	assert.Equal(t, "qa-lead", sub.LastUpdatedBy)
	assert.Equal(t, domain.StatusPending, sub.Tasks[0].Status, "children must not change")
	assert.Equal(t, domain.StatusPending, proc.Status)

	_, err = SetSubprocessStatus(doc, "nope", domain.StatusApproved, testStamp)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestSetProcessStatus(t *testing.T) {
	doc := testutil.NewTestDocument()

	got, err := SetProcessStatus(doc, "p-mix", domain.StatusApproved, testStamp)
	require.NoError(t, err)

	p, _ := got.FindProcess("p-mix")
	assert.Equal(t, domain.StatusApproved, p.Status)
	assert.Equal(t, "qa-lead", p.LastUpdatedBy)
	for _, s := range p.Subprocesses {
		assert.Equal(t, domain.StatusPending, s.Status, "roll-down must not happen")
	}

	other, _ := got.FindProcess("p-pack")
	assert.Empty(t, other.LastUpdatedBy)

	_, err = SetProcessStatus(doc, "nope", domain.StatusApproved, testStamp)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestAddComment_PrependsAndKeepsStatus(t *testing.T) {
	doc := testutil.NewTestDocument()
	ids := testutil.SequentialIDs("c")

	got, err := AddTaskComment(doc, "t-fill", "first", testStamp, ids)
	require.NoError(t, err)
	later := Stamp{Actor: "auditor", At: testutil.FixedTime.Add(time.Minute)}
	got, err = AddTaskComment(got, "t-fill", "  second  ", later, ids)
	require.NoError(t, err)

	task, _, _, _ := got.FindTask("t-fill")
	require.Len(t, task.Comments, 2)
	assert.Equal(t, domain.Comment{ID: "c-2", Text: "second", User: "auditor", Timestamp: later.At}, task.Comments[0])
	assert.Equal(t, "c-1", task.Comments[1].ID)
	assert.Equal(t, domain.StatusNeedsFix, task.Status, "comment must not alter status")
	assert.Equal(t, "auditor", task.LastUpdatedBy)

	orig, _, _, _ := doc.FindTask("t-fill")
	assert.Empty(t, orig.Comments)
}

func TestAddComment_AllLevels(t *testing.T) {
	doc := testutil.NewTestDocument()
	ids := testutil.SequentialIDs("c")

	got, err := AddProcessComment(doc, "p-pack", "process note", testStamp, ids)
	require.NoError(t, err)
	got, err = AddSubprocessComment(got, "s-blend", "subprocess note", testStamp, ids)
	require.NoError(t, err)

	p, _ := got.FindProcess("p-pack")
	require.Len(t, p.Comments, 1)
	assert.Equal(t, "process note", p.Comments[0].Text)
	assert.Equal(t, "qa-lead", p.Comments[0].User)

	s, _, _ := got.FindSubprocess("s-blend")
	require.Len(t, s.Comments, 1)
	assert.Equal(t, "subprocess note", s.Comments[0].Text)
	assert.Equal(t, int64(3), got.Version)
}

func TestAddComment_Errors(t *testing.T) {
	doc := testutil.NewTestDocument()
	ids := testutil.SequentialIDs("c")

	_, err := AddTaskComment(doc, "t-load", "   ", testStamp, ids)
	assert.ErrorIs(t, err, ErrEmptyComment)

	_, err = AddProcessComment(doc, "missing", "text", testStamp, ids)
	assert.ErrorIs(t, err, ErrNodeNotFound)

	_, err = AddSubprocessComment(doc, "missing", "text", testStamp, ids)
	assert.ErrorIs(t, err, ErrNodeNotFound)

	_, err = AddTaskComment(doc, "missing", "text", testStamp, ids)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestBulkSetTaskStatus_ChangesExactlyTargets(t *testing.T) {
	doc := testutil.NewTestDocument()

	res, err := BulkSetTaskStatus(doc, []string{"t-load", "t-dry", "unknown"}, domain.StatusApproved, testStamp)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Updated)

	for _, p := range res.Doc.Processes {
		orig, _ := doc.FindProcess(p.ID)
		assert.Equal(t, orig.Status, p.Status)
		assert.Equal(t, orig.LastUpdatedAt, p.LastUpdatedAt)
		for _, s := range p.Subprocesses {
			origSub, _, _ := doc.FindSubprocess(s.ID)
			assert.Equal(t, origSub.Status, s.Status)
			for _, tk := range s.Tasks {
				origTask, _, _, _ := doc.FindTask(tk.ID)
				if tk.ID == "t-load" || tk.ID == "t-dry" {
					assert.Equal(t, domain.StatusApproved, tk.Status)
					require.NotNil(t, tk.LastUpdatedAt)
					assert.Equal(t, testutil.FixedTime, *tk.LastUpdatedAt)
					continue
				}
				assert.Equal(t, *origTask, tk, "untargeted task %s changed", tk.ID)
			}
		}
	}
}

func TestBulkSetTaskStatus_EmptyAndInvalid(t *testing.T) {
	doc := testutil.NewTestDocument()

	res, err := BulkSetTaskStatus(doc, nil, domain.StatusApproved, testStamp)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Updated)
	assert.Equal(t, doc.Version, res.Doc.Version)

	res, err = BulkSetTaskStatus(doc, []string{"nope"}, domain.StatusApproved, testStamp)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Updated)
	assert.Equal(t, doc.Version, res.Doc.Version)

	_, err = BulkSetTaskStatus(doc, []string{"t-load"}, domain.Status(""), testStamp)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
