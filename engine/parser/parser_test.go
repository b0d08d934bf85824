package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Intent
	}{
		{
			name:  "empty string",
			input: "",
			want:  Intent{},
		},
		{
			name:  "whitespace only",
			input: "   ",
			want:  Intent{},
		},
		{
			name:  "play indices",
			input: "play 0 1 2",
			want:  Intent{Verb: "play", Nums: []int{0, 1, 2}},
		},
		{
			name:  "p alias with commas",
			input: "p 0, 3, 4",
			want:  Intent{Verb: "play", Nums: []int{0, 3, 4}},
		},
		{
			name:  "card codes",
			input: "play AS 10d kh",
			want:  Intent{Verb: "play", Words: []string{"as", "10d", "kh"}},
		},
		{
			name:  "discard range",
			input: "d 1-3",
			want:  Intent{Verb: "discard", Nums: []int{1, 2, 3}},
		},
		{
			name:  "card words",
			input: "play ah ks",
			want:  Intent{Verb: "play", Words: []string{"ah", "ks"}},
		},
		{
			name:  "buy card",
			input: "buy card 1",
			want:  Intent{Verb: "buy_card", Nums: []int{1}, Words: []string{}},
		},
		{
			name:  "buy pack",
			input: "buy pack 0",
			want:  Intent{Verb: "buy_pack", Nums: []int{0}, Words: []string{}},
		},
		{
			name:  "buy voucher",
			input: "BUY VOUCHER 0",
			want:  Intent{Verb: "buy_voucher", Nums: []int{0}, Words: []string{}},
		},
		{
			name:  "bare buy is a card",
			input: "buy 2",
			want:  Intent{Verb: "buy_card", Nums: []int{2}},
		},
		{
			name:  "sell joker by uid",
			input: "sell joker #17",
			want:  Intent{Verb: "sell_joker", UIDs: []uint32{17}, Words: []string{}},
		},
		{
			name:  "sell planet by name",
			input: "sell planet pluto",
			want:  Intent{Verb: "sell_consumable", Words: []string{"pluto"}},
		},
		{
			name:  "use with cards",
			input: "use #9 0 1",
			want:  Intent{Verb: "use_consumable", Nums: []int{0, 1}, UIDs: []uint32{9}},
		},
		{
			name:  "skip pack",
			input: "skip pack",
			want:  Intent{Verb: "skip_pack", Words: []string{}},
		},
		{
			name:  "bare skip",
			input: "skip",
			want:  Intent{Verb: "skip_blind"},
		},
		{
			name:  "enter shop",
			input: "enter shop",
			want:  Intent{Verb: "enter_shop", Words: []string{}},
		},
		{
			name:  "leave shop",
			input: "leave shop",
			want:  Intent{Verb: "leave_shop", Words: []string{}},
		},
		{
			name:  "reset with seed",
			input: "new 42",
			want:  Intent{Verb: "reset", Nums: []int{42}},
		},
		{
			name:  "front-end verb",
			input: "q",
			want:  Intent{Verb: "quit"},
		},
		{
			name:  "unknown verb passes through",
			input: "dance",
			want:  Intent{Verb: "dance"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, input := range []string{"12 play", "play $", "#3"} {
		_, err := Parse(input)
		assert.Error(t, err, input)
	}
}

func TestIntentEmpty(t *testing.T) {
	assert.True(t, Intent{}.Empty())
	assert.False(t, Intent{Verb: "play"}.Empty())
}
