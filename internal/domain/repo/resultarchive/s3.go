package resultarchive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/fleetops/fleetquery/internal/domain/entity"
	"github.com/fleetops/fleetquery/internal/log"
	"github.com/fleetops/fleetquery/internal/version"
)

const (
	unknownHostname = "<unknown>"

	keyTemplate = "<prefix>/<year>/<month>/<day>/campaign-<campaign>.json"
)

var ErrNoCampaign = errors.New("query run has no campaign id")

type S3Writer struct {
	s3client *s3.Client

	bucket string
	prefix string

	hostname string
}

func NewS3Writer(s3client *s3.Client, bucket string, prefix string) S3Writer {
	hostname, err := os.Hostname()
	if err != nil {
		log.Logger().Error(err, "failed to get hostname, falling backing to "+unknownHostname)

		hostname = unknownHostname
	}

	return S3Writer{
		s3client: s3client,
		bucket:   bucket,
		prefix:   prefix,
		hostname: hostname,
	}
}

func (r S3Writer) WriteQueryRun(ctx context.Context, run entity.QueryRun) error {
	now := time.Now()

	obj := r.createArchivedRun(run, now)

	b, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("failed to marshal local model: %w", err)
	}

	key, err := r.computeObjectKey(run, now)
	if err != nil {
		return fmt.Errorf("failed to compute object key: %w", err)
	}

	params := &s3.PutObjectInput{
		Bucket: &r.bucket,
		Key:    &key,
		Body:   bytes.NewReader(b),
	}

	_, err = r.s3client.PutObject(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to write in s3: %w", err)
	}

	return nil
}

func (r S3Writer) createArchivedRun(run entity.QueryRun, now time.Time) ArchivedRun {
	return ArchivedRun{
		ArchiveContext: ArchiveContext{
			Component: Component{
				Branch:   version.Branch,
				Revision: version.Revision,
			},
			Time: now,
			Host: r.hostname,
		},
		Run: Run{
			CampaignID:          run.CampaignID,
			Query:               run.Query,
			ResultCount:         run.ResultCount,
			TotalHosts:          run.TotalHosts,
			ElapsedMilliseconds: run.Elapsed.Milliseconds(),
			Results:             run.Results,
		},
	}
}

func (r S3Writer) computeObjectKey(run entity.QueryRun, now time.Time) (string, error) {
	if run.CampaignID == 0 {
		return "", ErrNoCampaign
	}

	template := strings.NewReplacer(
		"<prefix>", r.prefix,
		"<year>", fmt.Sprintf("%04d", now.Year()),
		"<month>", fmt.Sprintf("%02d", now.Month()),
		"<day>", fmt.Sprintf("%02d", now.Day()),
		"<campaign>", fmt.Sprintf("%d", run.CampaignID),
	)

	return template.Replace(keyTemplate), nil
}
