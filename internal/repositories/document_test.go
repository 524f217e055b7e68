package repositories

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/career-roadmap/internal/models"
)

func TestDocumentCreateAndFind(t *testing.T) {
	repo := NewDocumentRepository(newTestDB(t))

	doc := &models.Document{Filename: "cv_1.pdf", OriginalFileName: "me.pdf", FileType: "cv", FilePath: "uploads/cv_1.pdf"}
	require.NoError(t, repo.Create(doc))
	assert.NotEqual(t, uuid.Nil, doc.ID)

	got, err := repo.FindByID(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "me.pdf", got.OriginalFileName)
	assert.Nil(t, got.RunID)

	_, err = repo.FindByID(uuid.New())
	assert.ErrorContains(t, err, "document not found")
}

func TestDocumentFindByRun(t *testing.T) {
	repo := NewDocumentRepository(newTestDB(t))
	runID := uuid.New()
	other := uuid.New()
	base := time.Now().Add(-time.Hour)

	older := &models.Document{RunID: &runID, Filename: "a.pdf", CreatedAt: base}
	newer := &models.Document{RunID: &runID, Filename: "b.pdf", CreatedAt: base.Add(time.Minute)}
	unrelated := &models.Document{RunID: &other, Filename: "c.pdf"}
	for _, d := range []*models.Document{older, newer, unrelated} {
		require.NoError(t, repo.Create(d))
	}

	docs, err := repo.FindByRun(runID)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "b.pdf", docs[0].Filename)
	assert.Equal(t, "a.pdf", docs[1].Filename)
}
