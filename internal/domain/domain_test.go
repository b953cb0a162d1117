package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePin(t *testing.T) {
	tests := []struct {
		name    string
		pin     string
		wantErr bool
	}{
		{name: "four digits", pin: "1234"},
		{name: "leading zeros", pin: "0007"},
		{name: "too short", pin: "123", wantErr: true},
		{name: "too long", pin: "12345", wantErr: true},
		{name: "letters", pin: "12a4", wantErr: true},
		{name: "arabic-indic digits rejected", pin: "١٢٣٤", wantErr: true},
		{name: "empty", pin: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePin(tt.pin)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidPin)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestFactsAccepts(t *testing.T) {
	facts := Facts{}
	for i := range MaxFacts {
		require.True(t, facts.Accepts(fmt.Sprintf("k%d", i)))
		facts[fmt.Sprintf("k%d", i)] = "v"
	}

	assert.False(t, facts.Accepts("new"))
	assert.True(t, facts.Accepts("k3"), "overwrite never counts against the cap")
}

func TestFactsCloneAndKeys(t *testing.T) {
	var nilFacts Facts
	clone := nilFacts.Clone()
	require.NotNil(t, clone)
	assert.Empty(t, clone)

	facts := Facts{"name": "Sara", "birthday": "1 May"}
	clone = facts.Clone()
	clone["city"] = "Cairo"

	assert.Len(t, facts, 2)
	assert.Equal(t, []string{"birthday", "name"}, facts.Keys())
}

func TestUsageRecordForDay(t *testing.T) {
	today := UsageDay(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	require.Equal(t, "2026-03-02", today)

	tests := []struct {
		name   string
		record UsageRecord
		want   UsageRecord
	}{
		{name: "same day kept", record: UsageRecord{Count: 7, Date: today}, want: UsageRecord{Count: 7, Date: today}},
		{name: "stale day resets", record: UsageRecord{Count: 29, Date: "2026-03-01"}, want: UsageRecord{Count: 0, Date: today}},
		{name: "zero value resets", record: UsageRecord{}, want: UsageRecord{Count: 0, Date: today}},
		{name: "negative count clamps", record: UsageRecord{Count: -4, Date: today}, want: UsageRecord{Count: 0, Date: today}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.ForDay(today))
		})
	}
}

func TestUsageRecordRemaining(t *testing.T) {
	assert.Equal(t, 30, UsageRecord{}.Remaining(DailyMessageLimit))
	assert.Equal(t, 1, UsageRecord{Count: 29}.Remaining(DailyMessageLimit))
	assert.Equal(t, 0, UsageRecord{Count: 31}.Remaining(DailyMessageLimit))
}

func TestParseTool(t *testing.T) {
	tests := []struct {
		name string
		want Tool
	}{
		{name: "saveUserData", want: ToolSaveUserData},
		{name: "getUserData", want: ToolGetUserData},
		{name: "getAllUserData", want: ToolGetAllUserData},
		{name: "deleteUserData", want: ToolUnknown},
		{name: "", want: ToolUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTool(tt.name)
			assert.Equal(t, tt.want, got)
			if got != ToolUnknown {
				assert.Equal(t, tt.name, got.Name())
			}
		})
	}
}

func TestTranscriptAppendDoesNotAliasCommitted(t *testing.T) {
	committed := make(Transcript, 0, 8)
	committed = committed.Append(UserText("hi"), ModelText("hello"))

	working := committed.Append(UserText("again"))
	other := committed.Append(UserText("different"))

	require.Len(t, committed, 2)
	assert.Equal(t, "again", working[2].Parts[0].Text)
	assert.Equal(t, "different", other[2].Parts[0].Text)
}

func TestTranscriptValidate(t *testing.T) {
	call := FunctionCall{Name: ToolNameGetUserData, Args: map[string]any{"key": "name"}}

	valid := Transcript{}.Append(
		UserText("what is my name"),
		ModelCall(call),
		FunctionResult(ResponsePart(ToolNameGetUserData, "Sara")),
		ModelText("Your name is Sara"),
	)
	require.NoError(t, valid.Validate())

	orphan := Transcript{}.Append(UserText("hi"), FunctionResult(ResponsePart(ToolNameGetUserData, "")))
	require.Error(t, orphan.Validate())

	mismatch := Transcript{}.Append(ModelCall(call), FunctionResult(ResponsePart(ToolNameSaveUserData, "")))
	require.Error(t, mismatch.Validate())

	first := Transcript{FunctionResult(ResponsePart(ToolNameGetUserData, ""))}
	require.Error(t, first.Validate())
}

func TestFunctionCallStringArg(t *testing.T) {
	call := FunctionCall{Name: ToolNameSaveUserData, Args: map[string]any{"key": "age", "value": 31.0}}

	assert.Equal(t, "age", call.StringArg("key"))
	assert.Equal(t, "31", call.StringArg("value"))
	assert.Empty(t, call.StringArg("missing"))
}

func TestResponsePartResult(t *testing.T) {
	part := ResponsePart(ToolNameSaveUserData, "saved")
	require.NotNil(t, part.FunctionResponse)
	assert.Equal(t, "saved", part.FunctionResponse.Result())
}

func TestBackendErrorKindOf(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("turn: %w", NewBackendError(BackendServerError, "quota exhausted", cause))

	assert.Equal(t, BackendServerError, BackendErrorKindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "quota exhausted")
	assert.Equal(t, BackendNetworkFailure, BackendErrorKindOf(errors.New("dial tcp")))
}
