package mocks_test

import (
	"context"
	"errors"
	"testing"

	"github.com/devdeck/devdeck-api/internal/domain"
	"github.com/devdeck/devdeck-api/internal/generation"
	"github.com/devdeck/devdeck-api/internal/mocks"
	"github.com/devdeck/devdeck-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockTextGenerator(t *testing.T) {
	t.Parallel()

	t.Run("Default success case", func(t *testing.T) {
		t.Parallel()

		gen := &mocks.MockTextGenerator{}
		text, err := gen.GenerateCardText(context.Background(), "Go")

		require.NoError(t, err)
		assert.True(t, text.IsValidLanguage)
		assert.Equal(t, "Go", text.Name)
		assert.NoError(t, text.Stats.Validate())
		assert.Equal(t, []string{"Go"}, gen.Calls())
	})

	t.Run("Error case", func(t *testing.T) {
		t.Parallel()

		gen := &mocks.MockTextGenerator{Err: generation.ErrInvalidResponse}
		_, err := gen.GenerateCardText(context.Background(), "Go")

		assert.True(t, errors.Is(err, generation.ErrInvalidResponse))
		assert.Equal(t, 1, gen.CallCount())
	})

	t.Run("Custom function", func(t *testing.T) {
		t.Parallel()

		gen := &mocks.MockTextGenerator{
			GenerateCardTextFn: func(_ context.Context, name string) (*domain.CardText, error) {
				return mocks.InvalidCardText(name), nil
			},
		}
		text, err := gen.GenerateCardText(context.Background(), "Banana")

		require.NoError(t, err)
		assert.False(t, text.IsValidLanguage)
	})
}

func TestMockImageGenerator(t *testing.T) {
	t.Parallel()

	gen := &mocks.MockImageGenerator{}
	img, err := gen.GenerateImage(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "png", img.Format)

	format, err := generation.FormatFromBytes(img.Data)
	require.NoError(t, err)
	assert.Equal(t, "png", format)

	failing := mocks.MockGeneratorThatFails()
	_, err = failing.GenerateImage(context.Background(), "prompt")
	assert.ErrorIs(t, err, generation.ErrGenerationFailed)
	assert.Equal(t, []string{"prompt"}, failing.Calls())
}

func TestMockCardStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	text := mocks.ValidCardText("Go")
	seed, err := domain.NewCard("Go", *text, "/public/images/go.png", "")
	require.NoError(t, err)

	s := mocks.NewMockCardStore(seed)

	exists, err := s.Exists(ctx, "Go")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = s.GetByName(ctx, "Rust")
	assert.ErrorIs(t, err, store.ErrCardNotFound)

	invalid := *seed
	invalid.ImageURL = ""
	assert.ErrorIs(t, s.Upsert(ctx, &invalid), store.ErrInvalidEntity)

	n, err := s.DeleteByName(ctx, "Go")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.DeleteByName(ctx, "Go")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}
