package archive_test

import (
	"context"
	"testing"

	"github.com/acervo-digital/archive-content/pkg/archive"
	"github.com/acervo-digital/archive-content/pkg/archive/repo/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) *archive.Service {
	t.Helper()
	svc, err := archive.New(archive.WithStore(memory.New()))
	require.NoError(t, err)
	return svc
}

func setupModule(t *testing.T, kind archive.Kind) *archive.Module {
	t.Helper()
	module, err := setupService(t).Module(kind)
	require.NoError(t, err)
	return module
}

func documentRequest(title string) archive.CreateRequest {
	return archive.CreateRequest{
		Title:         title,
		Description:   "Documento digitalizado do acervo institucional, com transcrição completa.",
		CoverImageURL: "https://cdn.example.org/covers/doc.jpg",
	}
}

func TestServiceCreation(t *testing.T) {
	t.Run("without a store fails", func(t *testing.T) {
		svc, err := archive.New()
		assert.Error(t, err)
		assert.Nil(t, svc)
	})

	t.Run("exposes all six modules", func(t *testing.T) {
		svc := setupService(t)
		for _, kind := range archive.Kinds() {
			module, err := svc.Module(kind)
			require.NoError(t, err)
			assert.Equal(t, kind, module.Kind())
		}
	})

	t.Run("unknown collection", func(t *testing.T) {
		_, err := setupService(t).Module("recipes")
		require.Error(t, err)
		assert.Equal(t, archive.CodeNotFound, archive.CodeOf(err))
	})
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults to draft with derived slug", func(t *testing.T) {
		module := setupModule(t, archive.KindDocument)

		record, err := module.Create(ctx, documentRequest("Ata 1961"))
		require.NoError(t, err)

		assert.Equal(t, "ata-1961", record.Slug)
		assert.Equal(t, archive.StatusDraft, record.Status)
		assert.Nil(t, record.PublishedAt)
		assert.NotEqual(t, uuid.Nil, record.ID)
		assert.False(t, record.CreatedAt.After(record.UpdatedAt))
	})

	t.Run("explicit published status stamps publishedAt", func(t *testing.T) {
		module := setupModule(t, archive.KindDocument)

		req := documentRequest("Ata 1962")
		req.Status = archive.StatusPublished
		record, err := module.Create(ctx, req)
		require.NoError(t, err)

		require.NotNil(t, record.PublishedAt)
		assert.Equal(t, archive.StatusPublished, record.Status)
	})

	t.Run("explicit slug wins over title", func(t *testing.T) {
		module := setupModule(t, archive.KindDocument)

		req := documentRequest("Ata 1963")
		req.Slug = "Ata Especial"
		record, err := module.Create(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "ata-especial", record.Slug)
	})

	t.Run("duplicate slug conflicts", func(t *testing.T) {
		module := setupModule(t, archive.KindJournal)

		_, err := module.Create(ctx, documentRequest("Jornal Julho"))
		require.NoError(t, err)

		_, err = module.Create(ctx, documentRequest("Jornal Julho"))
		require.Error(t, err)
		assert.Equal(t, archive.CodeConflict, archive.CodeOf(err))

		var typed *archive.Error
		require.ErrorAs(t, err, &typed)
		assert.Contains(t, typed.Fields, "slug")
	})

	t.Run("validation failures carry field detail", func(t *testing.T) {
		module := setupModule(t, archive.KindDocument)

		_, err := module.Create(ctx, archive.CreateRequest{Title: "  "})
		require.Error(t, err)

		var typed *archive.Error
		require.ErrorAs(t, err, &typed)
		assert.Equal(t, archive.CodeValidation, typed.Code)
		assert.Contains(t, typed.Fields, "title")
		assert.Contains(t, typed.Fields, "description")
		assert.Contains(t, typed.Fields, "coverImageUrl")
	})

	t.Run("invalid status fails validation", func(t *testing.T) {
		module := setupModule(t, archive.KindDocument)

		req := documentRequest("Ata 1964")
		req.Status = "live"
		_, err := module.Create(ctx, req)
		require.Error(t, err)
		assert.Equal(t, archive.CodeValidation, archive.CodeOf(err))
	})

	t.Run("testimonial accepts media instead of cover", func(t *testing.T) {
		module := setupModule(t, archive.KindTestimonial)

		_, err := module.Create(ctx, archive.CreateRequest{
			Title:       "Depoimento de Maria",
			Description: "Depoimento gravado em vídeo durante a exposição comemorativa de 1998.",
			Details:     archive.Details{MediaURL: "https://cdn.example.org/media/maria.mp4"},
		})
		assert.NoError(t, err)

		_, err = module.Create(ctx, archive.CreateRequest{
			Title:       "Depoimento de José",
			Description: "Depoimento sem qualquer mídia associada, apenas texto transcrito.",
		})
		require.Error(t, err)
		assert.Equal(t, archive.CodeValidation, archive.CodeOf(err))
	})
}

func TestPublishLifecycle(t *testing.T) {
	ctx := context.Background()
	module := setupModule(t, archive.KindDocument)

	record, err := module.Create(ctx, documentRequest("Ata 1961"))
	require.NoError(t, err)
	require.Nil(t, record.PublishedAt)

	// Invisible to the public surface while draft.
	_, err = module.GetBySlug(ctx, "ata-1961")
	require.Error(t, err)
	assert.Equal(t, archive.CodeNotFound, archive.CodeOf(err))

	listed, err := module.List(ctx, archive.ListQuery{})
	require.NoError(t, err)
	assert.Empty(t, listed.Items)

	// First publish stamps publishedAt.
	published, err := module.UpdateStatus(ctx, record.ID, archive.StatusPublished)
	require.NoError(t, err)
	require.NotNil(t, published.PublishedAt)
	firstPublish := *published.PublishedAt

	found, err := module.GetBySlug(ctx, "ata-1961")
	require.NoError(t, err)
	assert.Equal(t, record.ID, found.ID)

	listed, err = module.List(ctx, archive.ListQuery{})
	require.NoError(t, err)
	assert.Len(t, listed.Items, 1)

	// Archive and republish: the original stamp survives untouched.
	archived, err := module.UpdateStatus(ctx, record.ID, archive.StatusArchived)
	require.NoError(t, err)
	require.NotNil(t, archived.PublishedAt)
	assert.Equal(t, firstPublish, *archived.PublishedAt)

	republished, err := module.UpdateStatus(ctx, record.ID, archive.StatusPublished)
	require.NoError(t, err)
	require.NotNil(t, republished.PublishedAt)
	assert.Equal(t, firstPublish, *republished.PublishedAt)

	t.Run("invalid status", func(t *testing.T) {
		_, err := module.UpdateStatus(ctx, record.ID, "retired")
		require.Error(t, err)
		assert.Equal(t, archive.CodeValidation, archive.CodeOf(err))
	})

	t.Run("missing record", func(t *testing.T) {
		_, err := module.UpdateStatus(ctx, uuid.New(), archive.StatusPublished)
		require.Error(t, err)
		assert.Equal(t, archive.CodeNotFound, archive.CodeOf(err))
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("merges partial fields", func(t *testing.T) {
		module := setupModule(t, archive.KindDocument)
		record, err := module.Create(ctx, documentRequest("Ata 1961"))
		require.NoError(t, err)

		newDescription := "Descrição revista após nova catalogação do documento original."
		featured := true
		updated, err := module.Update(ctx, record.ID, archive.UpdateRequest{
			Description: &newDescription,
			Featured:    &featured,
		})
		require.NoError(t, err)

		assert.Equal(t, newDescription, updated.Description)
		assert.True(t, updated.Featured)
		assert.Equal(t, record.Title, updated.Title)
		assert.Equal(t, record.Slug, updated.Slug)
		assert.True(t, updated.UpdatedAt.After(record.CreatedAt) || updated.UpdatedAt.Equal(record.CreatedAt))
	})

	t.Run("title change re-derives the slug", func(t *testing.T) {
		module := setupModule(t, archive.KindDocument)
		record, err := module.Create(ctx, documentRequest("Ata 1961"))
		require.NoError(t, err)

		newTitle := "Ata 1965"
		updated, err := module.Update(ctx, record.ID, archive.UpdateRequest{Title: &newTitle})
		require.NoError(t, err)
		assert.Equal(t, "ata-1965", updated.Slug)
	})

	t.Run("slug collision on update conflicts", func(t *testing.T) {
		module := setupModule(t, archive.KindDocument)
		_, err := module.Create(ctx, documentRequest("Ata 1961"))
		require.NoError(t, err)
		other, err := module.Create(ctx, documentRequest("Ata 1962"))
		require.NoError(t, err)

		taken := "ata-1961"
		_, err = module.Update(ctx, other.ID, archive.UpdateRequest{Slug: &taken})
		require.Error(t, err)
		assert.Equal(t, archive.CodeConflict, archive.CodeOf(err))
	})

	t.Run("keeping the own slug is not a conflict", func(t *testing.T) {
		module := setupModule(t, archive.KindDocument)
		record, err := module.Create(ctx, documentRequest("Ata 1961"))
		require.NoError(t, err)

		same := "ata-1961"
		updated, err := module.Update(ctx, record.ID, archive.UpdateRequest{Slug: &same})
		require.NoError(t, err)
		assert.Equal(t, "ata-1961", updated.Slug)
	})

	t.Run("merged published status stamps once", func(t *testing.T) {
		module := setupModule(t, archive.KindDocument)
		record, err := module.Create(ctx, documentRequest("Ata 1961"))
		require.NoError(t, err)

		published := archive.StatusPublished
		updated, err := module.Update(ctx, record.ID, archive.UpdateRequest{Status: &published})
		require.NoError(t, err)
		require.NotNil(t, updated.PublishedAt)
		stamp := *updated.PublishedAt

		again, err := module.Update(ctx, record.ID, archive.UpdateRequest{Status: &published})
		require.NoError(t, err)
		require.NotNil(t, again.PublishedAt)
		assert.Equal(t, stamp, *again.PublishedAt)
	})

	t.Run("missing record", func(t *testing.T) {
		module := setupModule(t, archive.KindDocument)
		title := "Ata"
		_, err := module.Update(ctx, uuid.New(), archive.UpdateRequest{Title: &title})
		require.Error(t, err)
		assert.Equal(t, archive.CodeNotFound, archive.CodeOf(err))
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	module := setupModule(t, archive.KindDocument)

	record, err := module.Create(ctx, documentRequest("Ata 1961"))
	require.NoError(t, err)

	require.NoError(t, module.Delete(ctx, record.ID))

	// Hard delete: the record is gone, not tombstoned, and the slug is
	// free again.
	_, err = module.Get(ctx, record.ID)
	assert.Equal(t, archive.CodeNotFound, archive.CodeOf(err))

	err = module.Delete(ctx, record.ID)
	assert.Equal(t, archive.CodeNotFound, archive.CodeOf(err))

	_, err = module.Create(ctx, documentRequest("Ata 1961"))
	assert.NoError(t, err)
}

func seedPublished(t *testing.T, module *archive.Module, req archive.CreateRequest) *archive.Record {
	t.Helper()
	req.Status = archive.StatusPublished
	record, err := module.Create(context.Background(), req)
	require.NoError(t, err)
	return record
}

func TestPublicList(t *testing.T) {
	ctx := context.Background()
	module := setupModule(t, archive.KindDocument)

	draft := documentRequest("Rascunho Interno")
	_, err := module.Create(ctx, draft)
	require.NoError(t, err)

	tagged := documentRequest("Ata da Fundação")
	tagged.Tags = []string{"fundacao", "atas"}
	seedPublished(t, module, tagged)

	related := documentRequest("Carta ao Presidente")
	related.RelatedPersonSlug = "joao-silva"
	seedPublished(t, module, related)

	funded := documentRequest("Relatório do Fundo Norte")
	funded.RelatedFundKey = "fundo-norte"
	seedPublished(t, module, funded)

	t.Run("never returns drafts", func(t *testing.T) {
		result, err := module.List(ctx, archive.ListQuery{})
		require.NoError(t, err)
		assert.Len(t, result.Items, 3)
		for _, item := range result.Items {
			assert.Equal(t, archive.StatusPublished, item.Status)
		}
	})

	t.Run("tag alone filters by equality", func(t *testing.T) {
		result, err := module.List(ctx, archive.ListQuery{Tag: "atas"})
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "ata-da-fundacao", result.Items[0].Slug)
	})

	t.Run("relation filters OR-merge with tag", func(t *testing.T) {
		result, err := module.List(ctx, archive.ListQuery{
			Tag:        "atas",
			PersonSlug: "joao-silva",
		})
		require.NoError(t, err)
		assert.Len(t, result.Items, 2)
	})

	t.Run("fund filter", func(t *testing.T) {
		result, err := module.List(ctx, archive.ListQuery{FundKey: "fundo-norte"})
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "relatorio-do-fundo-norte", result.Items[0].Slug)
	})

	t.Run("free-text search restricts matches", func(t *testing.T) {
		result, err := module.List(ctx, archive.ListQuery{Q: "presidente"})
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "carta-ao-presidente", result.Items[0].Slug)
	})

	t.Run("pagination envelope", func(t *testing.T) {
		result, err := module.List(ctx, archive.ListQuery{Page: 1, Limit: 2})
		require.NoError(t, err)
		assert.Len(t, result.Items, 2)
		assert.Equal(t, int64(3), result.Total)
		assert.Equal(t, 2, result.TotalPages)
		assert.True(t, result.HasNext)
		assert.False(t, result.HasPrev)

		second, err := module.List(ctx, archive.ListQuery{Page: 2, Limit: 2})
		require.NoError(t, err)
		assert.Len(t, second.Items, 1)
		assert.False(t, second.HasNext)
		assert.True(t, second.HasPrev)
	})
}

func TestAdminList(t *testing.T) {
	ctx := context.Background()
	module := setupModule(t, archive.KindDocument)

	_, err := module.Create(ctx, documentRequest("Rascunho Um"))
	require.NoError(t, err)
	seedPublished(t, module, documentRequest("Publicado Um"))

	featured := documentRequest("Destaque")
	featured.Featured = true
	seedPublished(t, module, featured)

	t.Run("sees every status", func(t *testing.T) {
		result, err := module.AdminList(ctx, archive.AdminListQuery{})
		require.NoError(t, err)
		assert.Len(t, result.Items, 3)
	})

	t.Run("status filter", func(t *testing.T) {
		result, err := module.AdminList(ctx, archive.AdminListQuery{Status: "draft"})
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "rascunho-um", result.Items[0].Slug)
	})

	t.Run("invalid status filter fails", func(t *testing.T) {
		_, err := module.AdminList(ctx, archive.AdminListQuery{Status: "live"})
		require.Error(t, err)
		assert.Equal(t, archive.CodeValidation, archive.CodeOf(err))
	})

	t.Run("slug filter", func(t *testing.T) {
		result, err := module.AdminList(ctx, archive.AdminListQuery{Slug: "destaque"})
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
	})

	t.Run("featured filter", func(t *testing.T) {
		isFeatured := true
		result, err := module.AdminList(ctx, archive.AdminListQuery{Featured: &isFeatured})
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "destaque", result.Items[0].Slug)
	})

	t.Run("named sort preset", func(t *testing.T) {
		result, err := module.AdminList(ctx, archive.AdminListQuery{Sort: "title_asc"})
		require.NoError(t, err)
		require.Len(t, result.Items, 3)
		assert.Equal(t, "destaque", result.Items[0].Slug)
	})

	t.Run("unknown sort falls back to default", func(t *testing.T) {
		result, err := module.AdminList(ctx, archive.AdminListQuery{Sort: "nonsense"})
		require.NoError(t, err)
		assert.Len(t, result.Items, 3)
	})
}
