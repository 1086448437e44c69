// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		wantTag1       string
		wantTag2       string
		wantTag3       []string
		wantInst       string
		wantInterested bool
		wantSummary    string
	}{
		{
			name: "well formed",
			text: `tag1: mlsys
tag2: LLM inference
tag3: KV cache, speculative decoding ,  , batching
institution: Tsinghua University, Microsoft Research
is_interested: yes
llm_summary: The paper proposes X. It shows Y.`,
			wantTag1:       "mlsys",
			wantTag2:       "LLM inference",
			wantTag3:       []string{"KV cache", "speculative decoding", "batching"},
			wantInst:       "Tsinghua University, Microsoft Research",
			wantInterested: true,
			wantSummary:    "The paper proposes X. It shows Y.",
		},
		{
			name: "summary continuation lines",
			text: `TAG1: sys
Tag2: network
is_interested: No
LLM_Summary:
  First sentence.

  Second sentence.`,
			wantTag1:    "sys",
			wantTag2:    "network",
			wantSummary: "First sentence. Second sentence.",
		},
		{
			name:           "interested in upper case",
			text:           "is_interested:  YES ",
			wantInterested: true,
		},
		{
			name: "trailing period is not yes",
			text: "is_interested: Yes.",
		},
		{
			name: "preamble before keys is ignored",
			text: `Here is the classification:
tag1: mlsys
is_interested: maybe`,
			wantTag1: "mlsys",
		},
		{
			name: "empty",
			text: "",
		},
		{
			name: "value containing colon",
			text: `institution: MIT: CSAIL
llm_summary: Ratio 1:2 wins.`,
			wantInst:    "MIT: CSAIL",
			wantSummary: "Ratio 1:2 wins.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseResponse(tt.text)
			assert.Equal(t, tt.wantTag1, got.Tag1)
			assert.Equal(t, tt.wantTag2, got.Tag2)
			assert.Equal(t, tt.wantTag3, got.Tag3)
			assert.Equal(t, tt.wantInst, got.Institution)
			assert.Equal(t, tt.wantInterested, got.Interested)
			assert.Equal(t, tt.wantSummary, got.Summary)
		})
	}
}

func TestParseResponse_KeysAfterSummaryStopContinuation(t *testing.T) {
	got := ParseResponse("llm_summary: One.\nTwo.\ntag1: sys")
	assert.Equal(t, "One. Two.", got.Summary)
	assert.Equal(t, "sys", got.Tag1)
}
