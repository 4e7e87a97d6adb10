package usecase_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"newsqa-orchestrator/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockDocumentStore struct {
	mock.Mock
}

func (m *mockDocumentStore) Fetch(ctx context.Context, locator string) ([]byte, error) {
	args := m.Called(ctx, locator)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

const sampleDocument = `# 뉴스 기사 모음

**수집 일시:** 2025-06-15 06:00:00
**기사 수:** 2

---

### 1. 삼성전자 2분기 실적 발표

**발행일:** 2025-06-12T09:30:00.000+09:00
**기자:** 김민수
**언론사:** 한국경제
**URL:** https://news.example.com/a1
**카테고리:** 경제

삼성전자가 2분기 잠정 실적을 공시했다. 반도체 부문 회복세가 뚜렷하다.

---

### 2. 수도권 부동산 규제 완화 발표

**발행일:** 2025-06-10T08:00:00.000+09:00
**기자:** 이서연
**언론사:** 조선일보
**URL:** https://news.example.com/a2
**카테고리:** 부동산

정부가 수도권 부동산 규제를 일부 완화한다고 발표했다.

---
`

func testLogger() *slog.Logger {
	return slog.Default()
}

func TestResolve_MatchesBlockByPassage(t *testing.T) {
	store := new(mockDocumentStore)
	store.On("Fetch", mock.Anything, "s3://news-archive/경제/2025-06-15.md").
		Return([]byte(sampleDocument), nil)

	resolver := usecase.NewMetadataResolver(store, "연합뉴스", testLogger())
	source := resolver.Resolve(context.Background(),
		"s3://news-archive/경제/2025-06-15.md",
		"반도체 부문 회복세가 뚜렷하다")

	assert.Equal(t, "삼성전자 2분기 실적 발표", source.Title)
	assert.Equal(t, "2025년 06월 12일", source.Date)
	assert.Equal(t, "김민수", source.Author)
	assert.Equal(t, "한국경제", source.Outlet)
	assert.Equal(t, "https://news.example.com/a1", source.URL)
	assert.Greater(t, source.Relevance, 0.0)

	// Resolution is idempotent for an unchanged document.
	again := resolver.Resolve(context.Background(),
		"s3://news-archive/경제/2025-06-15.md",
		"반도체 부문 회복세가 뚜렷하다")
	assert.Equal(t, source, again)
}

func TestResolve_MatchesSecondBlock(t *testing.T) {
	store := new(mockDocumentStore)
	store.On("Fetch", mock.Anything, mock.Anything).Return([]byte(sampleDocument), nil)

	resolver := usecase.NewMetadataResolver(store, "연합뉴스", testLogger())
	source := resolver.Resolve(context.Background(), "s3://b/k.md", "수도권 부동산 규제 완화")

	assert.Equal(t, "수도권 부동산 규제 완화 발표", source.Title)
	assert.Equal(t, "2025년 06월 10일", source.Date)
	assert.Equal(t, "조선일보", source.Outlet)
}

func TestResolve_InconclusiveMatchUsesFirstBlock(t *testing.T) {
	store := new(mockDocumentStore)
	store.On("Fetch", mock.Anything, mock.Anything).Return([]byte(sampleDocument), nil)

	resolver := usecase.NewMetadataResolver(store, "연합뉴스", testLogger())
	source := resolver.Resolve(context.Background(), "s3://b/k.md", "우주선 발사 성공 궤도 진입")

	assert.Equal(t, "삼성전자 2분기 실적 발표", source.Title)
	assert.Equal(t, 0.0, source.Relevance)
}

func TestResolve_FetchFailureYieldsDefaults(t *testing.T) {
	store := new(mockDocumentStore)
	store.On("Fetch", mock.Anything, mock.Anything).Return(nil, errors.New("gateway timeout"))

	resolver := usecase.NewMetadataResolver(store, "연합뉴스", testLogger())
	source := resolver.Resolve(context.Background(), "s3://b/k.md", "아무 구절")

	assert.Empty(t, source.Title)
	assert.Equal(t, "연합뉴스", source.Outlet)
	assert.Equal(t, "s3://b/k.md", source.Locator)
}

func TestResolve_DocumentWithoutBlocks(t *testing.T) {
	store := new(mockDocumentStore)
	store.On("Fetch", mock.Anything, mock.Anything).Return([]byte("plain text, no separators"), nil)

	resolver := usecase.NewMetadataResolver(store, "연합뉴스", testLogger())
	source := resolver.Resolve(context.Background(), "s3://b/k.md", "아무 구절")

	assert.Empty(t, source.Title)
	assert.Equal(t, "연합뉴스", source.Outlet)
}

func TestResolve_AlternateLabelSpelling(t *testing.T) {
	doc := `# 뉴스 기사 모음

---

### 1. 환율 급등 원인 분석

**발행일**: 2025-05-02
**언론사**: 매일경제

환율이 급등한 배경을 분석한다.

---
`
	store := new(mockDocumentStore)
	store.On("Fetch", mock.Anything, mock.Anything).Return([]byte(doc), nil)

	resolver := usecase.NewMetadataResolver(store, "연합뉴스", testLogger())
	source := resolver.Resolve(context.Background(), "s3://b/k.md", "환율 급등 배경")

	assert.Equal(t, "환율 급등 원인 분석", source.Title)
	assert.Equal(t, "2025년 05월 02일", source.Date)
	assert.Equal(t, "매일경제", source.Outlet)
}
