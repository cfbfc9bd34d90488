package mempool

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelSizes(t *testing.T) {
	require.Equal(t, []uint32{64, 16, 4}, levelSizes(64, 3))
	require.Equal(t, []uint32{4096, 1024, 256, 64, 16}, levelSizes(4096, 5))
	require.Equal(t, []uint32{100, 28}, levelSizes(100, 2))
	require.Nil(t, levelSizes(64, 0))
}

func TestComputeLayout_Tiny(t *testing.T) {
	lay, err := computeLayout(ConfigTiny)
	require.NoError(t, err)

	require.Equal(t, 256, lay.arenaLen)
	require.Len(t, lay.levels, 3)
	require.Equal(t, 1, lay.maxInlineLevel)
	require.Equal(t, 2, lay.bitmapWords)
	require.Equal(t, 256+8, lay.regionLen())

	assert.Equal(t, levelInfo{size: 64, nblocks: 4, inline: true}, lay.levels[0])
	assert.Equal(t, levelInfo{size: 16, nblocks: 16, inline: true}, lay.levels[1])
	assert.Equal(t, levelInfo{size: 4, nblocks: 64, wordOff: 0, words: 2}, lay.levels[2])
}

func TestComputeLayout_ExternalOffsets(t *testing.T) {
	lay, err := computeLayout(ConfigSmall)
	require.NoError(t, err)

	require.Equal(t, 0, lay.maxInlineLevel)
	require.Equal(t, 2+8+32, lay.bitmapWords)

	offs := []int{0, 0, 2, 10}
	words := []int{0, 2, 8, 32}
	for i, lv := range lay.levels {
		require.Equal(t, offs[i], lv.wordOff, "level %d", i)
		require.Equal(t, words[i], lv.words, "level %d", i)
		require.Equal(t, i == 0, lv.inline, "level %d", i)
	}
}

func TestComputeLayout_NoInlineLevel(t *testing.T) {
	lay, err := computeLayout(Config{MaxBlockSize: 4, NumMax: 40, NumLevels: 1})
	require.NoError(t, err)
	require.Equal(t, -1, lay.maxInlineLevel)
	require.Equal(t, 2, lay.bitmapWords)
}

func TestComputeLayout_Rejects(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"block too small", Config{MaxBlockSize: 2, NumMax: 1, NumLevels: 1}},
		{"block not word multiple", Config{MaxBlockSize: 6, NumMax: 1, NumLevels: 1}},
		{"no blocks", Config{MaxBlockSize: 64, NumMax: 0, NumLevels: 1}},
		{"no levels", Config{MaxBlockSize: 64, NumMax: 1, NumLevels: 0}},
		{"too many levels", Config{MaxBlockSize: 64, NumMax: 1, NumLevels: MaxLevels + 1}},
		{"unknown kind", Config{MaxBlockSize: 64, NumMax: 1, NumLevels: 1, Kind: Kind(9)}},
		{"inexact quartering", Config{MaxBlockSize: 100, NumMax: 1, NumLevels: 2}},
		{"level below word size", Config{MaxBlockSize: 64, NumMax: 1, NumLevels: 4}},
		{"arena over 4GB", Config{MaxBlockSize: 1 << 13, NumMax: 1 << 20, NumLevels: 1}},
		{"index overflows header", Config{MaxBlockSize: 64, NumMax: 1 << 25, NumLevels: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := computeLayout(tt.cfg)
			require.ErrorIs(t, err, ErrBadConfig)
			require.ErrorIs(t, tt.cfg.Validate(), ErrBadConfig)
		})
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, cfg := range []Config{ConfigTiny, ConfigSmall, ConfigMedium, ConfigLarge, ConfigDefault} {
		require.NoError(t, cfg.Validate(), cfg.Name)
	}
}

func TestAllocLevel(t *testing.T) {
	lay, err := computeLayout(ConfigTiny)
	require.NoError(t, err)

	tests := []struct{ size, want int }{
		{1, 2}, {4, 2}, {5, 1}, {16, 1}, {17, 0}, {64, 0}, {65, -1},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, lay.allocLevel(tt.size), "size %d", tt.size)
	}
}

func TestBlockAddressing(t *testing.T) {
	require.Equal(t, uint32(48), blockOffset(16, 3))
	require.Equal(t, uint32(3), blockIndex(48, 16))
	require.Equal(t, uint32(8), quadBase(11))
	require.Equal(t, uint32(0), quadBase(3))
}

func TestBlockFits(t *testing.T) {
	// arena not a multiple of the block size: the last block hangs off the end
	p := &Pool{lay: &layout{levels: []levelInfo{{size: 16, nblocks: 4}}, arenaLen: 56}}
	require.True(t, p.blockFits(0, 0))
	require.True(t, p.blockFits(0, 2))
	require.False(t, p.blockFits(0, 3))
	require.False(t, p.blockFits(0, 1<<31))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("user")
	require.NoError(t, err)
	require.Equal(t, KindUser, k)

	k, err = ParseKind("")
	require.NoError(t, err)
	require.Equal(t, KindKernel, k)

	_, err = ParseKind("thread")
	require.ErrorIs(t, err, ErrBadConfig)
	require.Equal(t, "kind(7)", Kind(7).String())
}

func TestKind_JSONRoundTrip(t *testing.T) {
	type report struct {
		Kind Kind `json:"kind"`
	}
	for _, k := range []Kind{KindKernel, KindUser} {
		data, err := json.Marshal(report{Kind: k})
		require.NoError(t, err)
		require.JSONEq(t, `{"kind":"`+k.String()+`"}`, string(data))

		var got report
		require.NoError(t, json.Unmarshal(data, &got))
		require.Equal(t, k, got.Kind)
	}

	var got report
	require.Error(t, json.Unmarshal([]byte(`{"kind":"thread"}`), &got))
}
