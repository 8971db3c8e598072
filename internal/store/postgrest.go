package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	supa "github.com/supabase-community/supabase-go"

	"github.com/DJIMIGA/latigue/internal/models"
)

const (
	jobsTable         = "production_jobs"
	segmentsTable     = "video_segments"
	assetsTable       = "segment_assets"
	publicationsTable = "publications"
)

// Postgrest persists records through the Supabase PostgREST API.
type Postgrest struct {
	client *supa.Client
}

// NewPostgrest builds a store from Supabase credentials. Both values are
// required; this is the fail-fast point for persistence configuration.
func NewPostgrest(supabaseURL, serviceKey string) (*Postgrest, error) {
	if supabaseURL == "" || serviceKey == "" {
		return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY must be set")
	}

	client, err := supa.NewClient(supabaseURL, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Supabase client: %w", err)
	}
	return &Postgrest{client: client}, nil
}

func (p *Postgrest) CreateJob(ctx context.Context, job *models.Job) error {
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	var results []models.Job
	_, err := p.client.From(jobsTable).Insert(job, false, "", "representation", "").ExecuteTo(&results)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	if len(results) == 0 {
		return fmt.Errorf("no record returned after insert, job id %s", job.ID)
	}
	*job = results[0]
	return nil
}

func (p *Postgrest) GetJob(ctx context.Context, id string) (*models.Job, error) {
	var results []models.Job
	_, err := p.client.From(jobsTable).Select("*", "", false).Eq("id", id).ExecuteTo(&results)
	if err != nil {
		return nil, fmt.Errorf("select job %s: %w", id, err)
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return &results[0], nil
}

func (p *Postgrest) ListJobs(ctx context.Context) ([]models.Job, error) {
	var results []models.Job
	_, err := p.client.From(jobsTable).Select("*", "", false).ExecuteTo(&results)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].CreatedAt.After(results[j].CreatedAt) })
	return results, nil
}

func (p *Postgrest) UpdateJob(ctx context.Context, job *models.Job) error {
	current, err := p.GetJob(ctx, job.ID)
	if err != nil {
		return err
	}
	if !models.ValidJobTransition(current.Status, job.Status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, job.Status)
	}

	job.UpdatedAt = time.Now().UTC()
	var results []models.Job
	_, err = p.client.From(jobsTable).Update(job, "", "").Eq("id", job.ID).ExecuteTo(&results)
	if err != nil {
		return fmt.Errorf("update job %s: %w", job.ID, err)
	}
	return nil
}

func (p *Postgrest) SetJobStatus(ctx context.Context, id string, status models.JobStatus, errorMessage string) error {
	current, err := p.GetJob(ctx, id)
	if err != nil {
		return err
	}
	if !models.ValidJobTransition(current.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, status)
	}

	update := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if errorMessage != "" {
		update["error_message"] = errorMessage
	}

	var results []models.Job
	_, err = p.client.From(jobsTable).Update(update, "", "").Eq("id", id).ExecuteTo(&results)
	if err != nil {
		return fmt.Errorf("update job status %s: %w", id, err)
	}
	return nil
}

func (p *Postgrest) CreateSegments(ctx context.Context, segments []models.Segment) error {
	if len(segments) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range segments {
		segments[i].CreatedAt = now
	}

	// A restarted job writes a fresh generation; stale rows go first so order
	// indices stay unique per job.
	var stale []models.Segment
	_, err := p.client.From(segmentsTable).Delete("representation", "").
		Eq("job_id", segments[0].JobID).
		ExecuteTo(&stale)
	if err != nil {
		return fmt.Errorf("clear segments for job %s: %w", segments[0].JobID, err)
	}

	var results []models.Segment
	_, err = p.client.From(segmentsTable).Insert(segments, false, "", "representation", "").ExecuteTo(&results)
	if err != nil {
		return fmt.Errorf("insert segments: %w", err)
	}
	return nil
}

func (p *Postgrest) ListSegments(ctx context.Context, jobID string) ([]models.Segment, error) {
	var results []models.Segment
	_, err := p.client.From(segmentsTable).Select("*", "", false).Eq("job_id", jobID).ExecuteTo(&results)
	if err != nil {
		return nil, fmt.Errorf("list segments for job %s: %w", jobID, err)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Order < results[j].Order })
	return results, nil
}

func (p *Postgrest) UpdateSegment(ctx context.Context, segment *models.Segment) error {
	var results []models.Segment
	_, err := p.client.From(segmentsTable).Update(segment, "", "").Eq("id", segment.ID).ExecuteTo(&results)
	if err != nil {
		return fmt.Errorf("update segment %s: %w", segment.ID, err)
	}
	return nil
}

func (p *Postgrest) UpsertAsset(ctx context.Context, asset *models.SegmentAsset) error {
	asset.CreatedAt = time.Now().UTC()
	var results []models.SegmentAsset
	// on_conflict on (job_id, segment_index) keeps the 1:0..1 relationship.
	_, err := p.client.From(assetsTable).Insert(asset, true, "job_id,segment_index", "representation", "").ExecuteTo(&results)
	if err != nil {
		return fmt.Errorf("upsert asset: %w", err)
	}
	return nil
}

func (p *Postgrest) GetAsset(ctx context.Context, jobID string, segmentIndex int) (*models.SegmentAsset, error) {
	var results []models.SegmentAsset
	_, err := p.client.From(assetsTable).Select("*", "", false).
		Eq("job_id", jobID).
		Eq("segment_index", strconv.Itoa(segmentIndex)).
		ExecuteTo(&results)
	if err != nil {
		return nil, fmt.Errorf("select asset: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return &results[0], nil
}

func (p *Postgrest) ListAssets(ctx context.Context, jobID string) ([]models.SegmentAsset, error) {
	var results []models.SegmentAsset
	_, err := p.client.From(assetsTable).Select("*", "", false).Eq("job_id", jobID).ExecuteTo(&results)
	if err != nil {
		return nil, fmt.Errorf("list assets for job %s: %w", jobID, err)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].SegmentIndex < results[j].SegmentIndex })
	return results, nil
}

func (p *Postgrest) CreatePublication(ctx context.Context, pub *models.Publication) error {
	var results []models.Publication
	_, err := p.client.From(publicationsTable).Insert(pub, false, "", "representation", "").ExecuteTo(&results)
	if err != nil {
		return fmt.Errorf("insert publication: %w", err)
	}
	return nil
}

func (p *Postgrest) ListPublications(ctx context.Context, jobID string) ([]models.Publication, error) {
	var results []models.Publication
	_, err := p.client.From(publicationsTable).Select("*", "", false).Eq("job_id", jobID).ExecuteTo(&results)
	if err != nil {
		return nil, fmt.Errorf("list publications for job %s: %w", jobID, err)
	}
	return results, nil
}

func (p *Postgrest) UpdatePublication(ctx context.Context, pub *models.Publication) error {
	var results []models.Publication
	_, err := p.client.From(publicationsTable).Update(pub, "", "").Eq("id", pub.ID).ExecuteTo(&results)
	if err != nil {
		return fmt.Errorf("update publication %s: %w", pub.ID, err)
	}
	return nil
}

var _ Store = (*Postgrest)(nil)
