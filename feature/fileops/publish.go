package fileops

import (
	"bytes"
	"context"
	"fmt"

	"sheetflow/core/pipeline"
	"sheetflow/core/recipe"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

type publishStageOptions struct {
	// ObjectName is the object key to write. Defaults to "<stage>.csv".
	// Supports {variable} substitution.
	ObjectName string `mapstructure:"object_name"`
	// Bucket overrides the configured bucket.
	Bucket string `mapstructure:"bucket"`
}

type publishStageStep struct {
	label  string
	source string
	opts   publishStageOptions
}

func newPublishStageStep(cfg recipe.StepConfig) (pipeline.Step, error) {
	var opts publishStageOptions
	if err := pipeline.DecodeOptions(cfg, &opts); err != nil {
		return nil, err
	}
	if cfg.SourceStage == "" {
		return nil, fmt.Errorf("source_stage is required")
	}
	return &publishStageStep{label: cfg.Label(), source: cfg.SourceStage, opts: opts}, nil
}

func (s *publishStageStep) Name() string { return "publish_stage" }

func (s *publishStageStep) Execute(ctx context.Context, env *pipeline.Env) error {
	if env.Storage == nil {
		return fmt.Errorf("publish_stage requires object storage; none is configured")
	}

	bucket := s.opts.Bucket
	if bucket == "" {
		bucket = env.Bucket
	}
	if bucket == "" {
		return fmt.Errorf("publish_stage: no bucket configured")
	}

	ds, err := env.Store.Load(s.source)
	if err != nil {
		return err
	}

	objectName := s.opts.ObjectName
	if objectName == "" {
		objectName = s.source + ".csv"
	}
	objectName, err = env.Vars.Substitute(objectName)
	if err != nil {
		return err
	}

	rendered, err := RenderCSV(ds)
	if err != nil {
		return err
	}

	exists, err := env.Storage.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %q: %w", bucket, err)
	}
	if !exists {
		if err := env.Storage.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %q: %w", bucket, err)
		}
	}

	_, err = env.Storage.PutObject(ctx, bucket, objectName,
		bytes.NewReader(rendered), int64(len(rendered)),
		minio.PutObjectOptions{ContentType: "text/csv"})
	if err != nil {
		return fmt.Errorf("failed to upload %q: %w", objectName, err)
	}

	env.Logger.Info("published stage",
		zap.String("stage", s.source),
		zap.String("bucket", bucket),
		zap.String("object", objectName),
		zap.Int("rows", ds.Len()),
	)
	return nil
}
