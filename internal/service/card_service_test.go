package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/devdeck/devdeck-api/internal/domain"
	"github.com/devdeck/devdeck-api/internal/generation"
	"github.com/devdeck/devdeck-api/internal/mocks"
	"github.com/devdeck/devdeck-api/internal/platform/logger"
	"github.com/devdeck/devdeck-api/internal/service"
	"github.com/devdeck/devdeck-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc    service.CardService
	cards  *mocks.MockCardStore
	text   *mocks.MockTextGenerator
	images *mocks.MockImageGenerator
	assets *mocks.MockAssetStore
	logs   *logger.TestLogBuffer
	sleeps []time.Duration
}

func newFixture(t *testing.T, seed ...*domain.Card) *fixture {
	t.Helper()

	log, buf := logger.GetTestLogger(t)
	f := &fixture{
		cards:  mocks.NewMockCardStore(seed...),
		text:   &mocks.MockTextGenerator{},
		images: &mocks.MockImageGenerator{},
		assets: mocks.NewMockAssetStore(),
		logs:   buf,
	}

	svc, err := service.NewCardService(service.Deps{
		Cards:        f.cards,
		Text:         f.text,
		Images:       f.images,
		Assets:       f.assets,
		Logger:       log,
		RequestDelay: 2 * time.Second,
	})
	require.NoError(t, err)
	service.SetSleep(svc, func(ctx context.Context, d time.Duration) error {
		f.sleeps = append(f.sleeps, d)
		return ctx.Err()
	})
	f.svc = svc
	return f
}

func storedCard(t *testing.T, name string) *domain.Card {
	t.Helper()
	card, err := domain.NewCard(name, *mocks.ValidCardText(name), "/public/images/"+domain.FilenameBase(name)+".webp", "")
	require.NoError(t, err)
	return card
}

func TestNewCardServiceRequiresDependencies(t *testing.T) {
	t.Parallel()

	full := service.Deps{
		Cards:  mocks.NewMockCardStore(),
		Text:   &mocks.MockTextGenerator{},
		Images: &mocks.MockImageGenerator{},
		Assets: mocks.NewMockAssetStore(),
	}

	tests := []struct {
		name   string
		mutate func(d *service.Deps)
	}{
		{"nil card store", func(d *service.Deps) { d.Cards = nil }},
		{"nil text generator", func(d *service.Deps) { d.Text = nil }},
		{"nil image generator", func(d *service.Deps) { d.Images = nil }},
		{"nil asset store", func(d *service.Deps) { d.Assets = nil }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			deps := full
			tc.mutate(&deps)
			svc, err := service.NewCardService(deps)
			assert.Nil(t, svc)
			assert.ErrorIs(t, err, service.ErrMissingDependency)
		})
	}

	svc, err := service.NewCardService(full)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestProduceCardCanonicalizesName(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	card, err := f.svc.ProduceCard(context.Background(), "  jAVAscript ", false)
	require.NoError(t, err)

	assert.Equal(t, "Javascript", card.Name)
	assert.Equal(t, []string{"Javascript"}, f.text.Calls())
	assert.Equal(t, []string{"javascript.png"}, f.assets.Writes())
	assert.Equal(t, "/public/images/javascript.png", card.ImageURL)
	assert.Empty(t, f.cards.Upserts(), "ProduceCard must not persist")
}

func TestProduceCardInvalidSubject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text *mocks.MockTextGenerator
	}{
		{
			name: "generator rejects subject",
			text: &mocks.MockTextGenerator{
				GenerateCardTextFn: func(_ context.Context, name string) (*domain.CardText, error) {
					return mocks.InvalidCardText(name), nil
				},
			},
		},
		{
			name: "generator fails",
			text: &mocks.MockTextGenerator{Err: generation.ErrInvalidResponse},
		},
		{
			name: "generator returns nothing",
			text: &mocks.MockTextGenerator{
				GenerateCardTextFn: func(context.Context, string) (*domain.CardText, error) { return nil, nil },
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			svc, err := service.NewCardService(service.Deps{
				Cards:  f.cards,
				Text:   tc.text,
				Images: f.images,
				Assets: f.assets,
			})
			require.NoError(t, err)

			card, err := svc.ProduceCard(context.Background(), "bananaphone", true)
			assert.Nil(t, card)
			assert.ErrorIs(t, err, service.ErrInvalidSubject)
			assert.Zero(t, f.images.CallCount(), "no image generation for invalid subjects")
			assert.Empty(t, f.assets.Writes())
		})
	}
}

func TestProduceCardEmptyName(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.ProduceCard(context.Background(), "   ", false)
	assert.ErrorIs(t, err, service.ErrInvalidSubject)
	assert.ErrorIs(t, err, domain.ErrEmptyName)
	assert.Zero(t, f.text.CallCount())
}

func TestProduceCardImagePolicy(t *testing.T) {
	t.Parallel()

	t.Run("existing image reused when not forced", func(t *testing.T) {
		f := newFixture(t)
		f.assets.AddImage("rust", "/public/images/rust.webp")

		card, err := f.svc.ProduceCard(context.Background(), "Rust", false)
		require.NoError(t, err)
		assert.Equal(t, "/public/images/rust.webp", card.ImageURL)
		assert.Zero(t, f.images.CallCount())
	})

	t.Run("forced regeneration ignores existing image", func(t *testing.T) {
		f := newFixture(t)
		f.assets.AddImage("rust", "/public/images/rust.webp")

		card, err := f.svc.ProduceCard(context.Background(), "Rust", true)
		require.NoError(t, err)
		assert.Equal(t, "/public/images/rust.png", card.ImageURL)
		assert.Equal(t, 1, f.images.CallCount())
		assert.Equal(t, []string{"a heroic portrait of Rust"}, f.images.Calls())
	})

	t.Run("generation failure falls back to placeholder", func(t *testing.T) {
		f := newFixture(t)
		f.images.Err = generation.ErrPollExhausted

		card, err := f.svc.ProduceCard(context.Background(), "Rust", false)
		require.NoError(t, err)
		assert.Equal(t, mocks.DefaultPlaceholder, card.ImageURL)
		assert.Empty(t, f.assets.Writes())
	})

	t.Run("forced generation failure uses placeholder even with an old image", func(t *testing.T) {
		f := newFixture(t)
		f.assets.AddImage("rust", "/public/images/rust.webp")
		f.images.Err = generation.ErrJobFailed

		card, err := f.svc.ProduceCard(context.Background(), "Rust", true)
		require.NoError(t, err)
		assert.Equal(t, mocks.DefaultPlaceholder, card.ImageURL)
	})

	t.Run("write failure falls back to placeholder", func(t *testing.T) {
		f := newFixture(t)
		f.assets.WriteFn = func(context.Context, string, string, []byte) (string, error) {
			return "", errors.New("disk full")
		}

		card, err := f.svc.ProduceCard(context.Background(), "Rust", false)
		require.NoError(t, err)
		assert.Equal(t, mocks.DefaultPlaceholder, card.ImageURL)
		assert.Equal(t, []string{"rust.png"}, f.assets.Writes())
	})

	t.Run("name without filename characters uses placeholder", func(t *testing.T) {
		f := newFixture(t)

		card, err := f.svc.ProduceCard(context.Background(), "++", false)
		require.NoError(t, err)
		assert.Equal(t, mocks.DefaultPlaceholder, card.ImageURL)
		assert.Zero(t, f.images.CallCount())
	})
}

func TestProduceCardIcon(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.assets.AddIcon("python", "/public/icons/python.svg")

	py, err := f.svc.ProduceCard(context.Background(), "python", false)
	require.NoError(t, err)
	assert.Equal(t, "/public/icons/python.svg", py.IconURL)

	rb, err := f.svc.ProduceCard(context.Background(), "ruby", false)
	require.NoError(t, err)
	assert.Empty(t, rb.IconURL)
}

func TestProduceCardClampsStats(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.text.GenerateCardTextFn = func(_ context.Context, name string) (*domain.CardText, error) {
		text := mocks.ValidCardText(name)
		text.Stats.PWR = 140
		text.Stats.CRV = -3
		return text, nil
	}

	card, err := f.svc.ProduceCard(context.Background(), "Go", false)
	require.NoError(t, err)
	assert.Equal(t, domain.StatMax, card.PWR)
	assert.Equal(t, domain.StatMin, card.CRV)
	assert.Contains(t, f.logs.String(), "provider contract violation")
}

func TestProduceCardNormalizesType(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.text.GenerateCardTextFn = func(_ context.Context, name string) (*domain.CardText, error) {
		text := mocks.ValidCardText(name)
		text.Type = "Spaceship"
		text.Name = "something else"
		return text, nil
	}

	card, err := f.svc.ProduceCard(context.Background(), "go", false)
	require.NoError(t, err)
	assert.Equal(t, domain.CardTypeOther, card.Type)
	assert.Equal(t, "Go", card.Name, "echoed name is not trusted")
}

func TestSaveCard(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	card := storedCard(t, "Go")

	require.NoError(t, f.svc.SaveCard(context.Background(), card))
	stored, ok := f.cards.Card("Go")
	require.True(t, ok)
	assert.Equal(t, card, stored)

	f.cards.UpsertFn = func(context.Context, *domain.Card) error { return store.ErrStoreUnavailable }
	err := f.svc.SaveCard(context.Background(), card)
	assert.ErrorIs(t, err, service.ErrPersistence)
	assert.ErrorIs(t, err, store.ErrStoreUnavailable)

	assert.ErrorIs(t, f.svc.SaveCard(context.Background(), nil), service.ErrPersistence)
}

func TestCreateCard(t *testing.T) {
	t.Parallel()

	t.Run("existing card returned without generation", func(t *testing.T) {
		f := newFixture(t, storedCard(t, "Go"))

		card, created, err := f.svc.CreateCard(context.Background(), "GO")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, "Go", card.Name)
		assert.Zero(t, f.text.CallCount())
		assert.Zero(t, f.images.CallCount())
	})

	t.Run("new card produced with forced image and saved", func(t *testing.T) {
		f := newFixture(t)
		f.assets.AddImage("go", "/public/images/go.webp")

		card, created, err := f.svc.CreateCard(context.Background(), "go")
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "/public/images/go.png", card.ImageURL)
		assert.Equal(t, 1, f.images.CallCount())
		assert.Equal(t, []string{"Go"}, f.cards.Upserts())
	})

	t.Run("invalid subject writes nothing", func(t *testing.T) {
		f := newFixture(t)
		f.text.GenerateCardTextFn = func(_ context.Context, name string) (*domain.CardText, error) {
			return mocks.InvalidCardText(name), nil
		}

		_, _, err := f.svc.CreateCard(context.Background(), "Toaster")
		assert.ErrorIs(t, err, service.ErrInvalidSubject)
		assert.Empty(t, f.cards.Upserts())
	})

	t.Run("persistence failure", func(t *testing.T) {
		f := newFixture(t)
		f.cards.UpsertFn = func(context.Context, *domain.Card) error { return errors.New("disk I/O error") }

		_, created, err := f.svc.CreateCard(context.Background(), "Go")
		assert.False(t, created)
		assert.ErrorIs(t, err, service.ErrPersistence)
	})

	t.Run("lookup failure", func(t *testing.T) {
		f := newFixture(t)
		f.cards.GetByNameFn = func(context.Context, string) (*domain.Card, error) {
			return nil, store.ErrStoreUnavailable
		}

		_, _, err := f.svc.CreateCard(context.Background(), "Go")
		assert.ErrorIs(t, err, store.ErrStoreUnavailable)
		assert.Zero(t, f.text.CallCount())
	})
}

func TestRefreshCardOverwrites(t *testing.T) {
	t.Parallel()
	old := storedCard(t, "Go")
	old.Description = "stale"
	f := newFixture(t, old)

	card, err := f.svc.RefreshCard(context.Background(), "go")
	require.NoError(t, err)
	assert.Equal(t, "Go is a programming language.", card.Description)

	stored, ok := f.cards.Card("Go")
	require.True(t, ok)
	assert.Equal(t, card.Description, stored.Description)
	assert.Equal(t, "/public/images/go.png", stored.ImageURL)
}

func TestDeleteCard(t *testing.T) {
	t.Parallel()
	f := newFixture(t, storedCard(t, "Go"))
	ctx := context.Background()

	n, err := f.svc.DeleteCard(ctx, "Nope")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = f.svc.DeleteCard(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	exists, err := f.svc.CardExists(ctx, "Go")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGetAndListCards(t *testing.T) {
	t.Parallel()
	f := newFixture(t, storedCard(t, "Rust"), storedCard(t, "Go"))
	ctx := context.Background()

	card, err := f.svc.GetCard(ctx, "rust")
	require.NoError(t, err)
	assert.Equal(t, "Rust", card.Name)

	_, err = f.svc.GetCard(ctx, "Cobol")
	assert.ErrorIs(t, err, store.ErrCardNotFound)

	cards, err := f.svc.ListCards(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "Go", cards[0].Name)
	assert.Equal(t, "Rust", cards[1].Name)
}
