package placeholder

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/PrivateGER/hydrus-nextbooru-sub001/internal/errors"
)

// A known-valid 4x3 blurhash (from the reference test vectors).
const sampleHash = "LFE.@D9F01_2%L%MIVD*9Goe-;WB"

func TestRender(t *testing.T) {
	data, err := Render(sampleHash, 64, 48)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())
}

func TestRenderDefaultsAndClamps(t *testing.T) {
	data, err := Render(sampleHash, 0, 0)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, DefaultSize, img.Bounds().Dx())
	assert.Equal(t, DefaultSize, img.Bounds().Dy())

	data, err = Render(sampleHash, 10000, 10000)
	require.NoError(t, err)
	img, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, MaxSize, img.Bounds().Dx())
	assert.Equal(t, MaxSize, img.Bounds().Dy())
}

func TestRenderEmptyHash(t *testing.T) {
	_, err := Render("", 32, 32)
	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeValidation, derr.Code)
}

func TestRenderGarbageHash(t *testing.T) {
	_, err := Render("!!", 32, 32)
	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeValidation, derr.Code)
}
