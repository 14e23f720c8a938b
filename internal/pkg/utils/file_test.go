package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupportAudioExt(t *testing.T) {
	assert.True(t, SupportAudioExt(".wav"))
	assert.True(t, SupportAudioExt(".mp3"))
	assert.True(t, SupportAudioExt(".m4a"))
	assert.False(t, SupportAudioExt(".txt"))
	assert.False(t, SupportAudioExt(""))
}

func TestAudioContentType(t *testing.T) {
	assert.Equal(t, "audio/mpeg", AudioContentType(".mp3"))
	assert.Equal(t, "audio/wav", AudioContentType(".wav"))
	assert.Equal(t, "audio/mp4", AudioContentType(".m4a"))
	assert.Equal(t, "audio/mpeg", AudioContentType(""))
}

func TestMakeOriginalKey(t *testing.T) {
	k, err := MakeOriginalKey("call 1.mp3")
	require.Nil(t, err)
	assert.True(t, strings.HasPrefix(k, "originals/"), k)
	assert.True(t, strings.HasSuffix(k, "-call_1.mp3"), k)
}

func TestMakeOriginalKey_Fails(t *testing.T) {
	for _, fn := range []string{"", ".", "..", ".hidden"} {
		_, err := MakeOriginalKey(fn)
		assert.NotNil(t, err, fn)
	}
}

func TestMakeDubbedKey(t *testing.T) {
	k := MakeDubbedKey("id1")
	assert.True(t, strings.HasPrefix(k, "dubbed/id1-"), k)
	assert.True(t, strings.HasSuffix(k, ".mp3"), k)
}
