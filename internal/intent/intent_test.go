package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/config"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/pkg/types"
)

func newClassifier() *Classifier {
	return New(config.Default().Intent)
}

func TestClassify_Deadline(t *testing.T) {
	c := newClassifier()

	queries := []string{
		"What is the deadline for filing annual returns?",
		"annual return due date for FY 2024-25",
		"By when do producers have to register?",
		"LAST DATE for Q4 filing",
	}
	for _, q := range queries {
		assert.Equal(t, types.IntentDeadline, c.Classify(q), "query: %s", q)
	}
}

func TestClassify_Definition(t *testing.T) {
	c := newClassifier()

	assert.Equal(t, types.IntentDefinition, c.Classify("What is extended producer responsibility?"))
	assert.Equal(t, types.IntentDefinition, c.Classify("full form of PIBO"))
	assert.Equal(t, types.IntentDefinition, c.Classify("define brand owner"))
}

func TestClassify_DeadlineBeatsDefinition(t *testing.T) {
	c := newClassifier()
	// Matches both tables; deadline rules run first.
	assert.Equal(t, types.IntentDeadline, c.Classify("what is the deadline for annual returns"))
}

func TestClassify_General(t *testing.T) {
	c := newClassifier()
	assert.Equal(t, types.IntentGeneral, c.Classify("How do recycling certificates work?"))
	assert.Equal(t, types.IntentGeneral, c.Classify(""))
}

func TestTimeSensitive(t *testing.T) {
	assert.True(t, types.IntentDeadline.TimeSensitive())
	assert.False(t, types.IntentDefinition.TimeSensitive())
	assert.False(t, types.IntentGeneral.TimeSensitive())
}
