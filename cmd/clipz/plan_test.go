package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type planResult struct {
	Title       string `json:"title"`
	ContentType string `json:"contentType"`
	Platform    string `json:"platform"`
	NoClips     bool   `json:"noClips"`
	Clips       []struct {
		Id           int     `json:"id"`
		StartSeconds float64 `json:"startSeconds"`
		EndSeconds   float64 `json:"endSeconds"`
		Caption      string  `json:"caption"`
	} `json:"clips"`
}

func runPlan(t *testing.T, args ...string) (planResult, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"plan"}, args...))

	var result planResult
	if err := root.Execute(); err != nil {
		return result, err
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	return result, nil
}

func TestPlanPrintsCandidates(t *testing.T) {
	result, err := runPlan(t,
		"--title", "How to build a React app tutorial",
		"--channel", "Code Lab",
		"--duration", "930",
		"--url", "https://www.youtube.com/watch?v=abc",
	)
	require.NoError(t, err)

	assert.Equal(t, "youtube", result.Platform)
	assert.False(t, result.NoClips)
	require.Len(t, result.Clips, 3)
	assert.Equal(t, 0.0, result.Clips[0].StartSeconds)
	assert.Equal(t, 30.0, result.Clips[0].EndSeconds)
	assert.Equal(t, 310.0, result.Clips[1].StartSeconds)
	assert.Contains(t, result.Clips[0].Caption, "@codelab")
}

func TestPlanOverrides(t *testing.T) {
	result, err := runPlan(t, "--title", "x", "--duration", "600", "--clip-length", "60", "--max-clips", "5")
	require.NoError(t, err)

	require.Len(t, result.Clips, 5)
	assert.Equal(t, 60.0, result.Clips[0].EndSeconds)
	assert.Equal(t, 120.0, result.Clips[1].StartSeconds)
}

func TestPlanShortVideo(t *testing.T) {
	result, err := runPlan(t, "--title", "short", "--duration", "20")
	require.NoError(t, err)
	assert.True(t, result.NoClips)
	assert.Empty(t, result.Clips)
}

func TestPlanRequiresDuration(t *testing.T) {
	_, err := runPlan(t, "--title", "x")
	assert.Error(t, err)
}
