// Package mfreport persists run reports as JSON, to S3 when a bucket is
// configured and to a local file or stdout otherwise.
package mfreport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	mfcli "github.com/morningfinancial/morning-financial/mf-cli"
	"github.com/rs/zerolog"
)

type Writer struct {
	service mfcli.Service
	s3      s3iface.S3API

	bucket     string
	outFile    string
	reportName string

	now    func() time.Time
	stdout io.Writer
}

func ReportKey(serviceName, reportName string, timestamp time.Time) string {
	return fmt.Sprintf("%v/%v/%v/%v/%v", serviceName, reportName, timestamp.Format("2006-01-02"), timestamp.Format("15"), timestamp.Format("2006-01-02-15:04:05.000000.json"))
}

// NewWriter returns a Writer. s3Api may be nil when bucket is empty.
func NewWriter(service mfcli.Service, s3Api s3iface.S3API, bucket, outFile, reportName string) *Writer {
	return &Writer{
		service:    service,
		s3:         s3Api,
		bucket:     bucket,
		outFile:    outFile,
		reportName: reportName,
		now:        func() time.Time { return time.Now().UTC() },
		stdout:     os.Stdout,
	}
}

func (w *Writer) Write(ctx context.Context, report any) error {
	logger := zerolog.Ctx(ctx)
	reportBytes, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	now := w.now()
	switch {
	case w.bucket != "":
		key := ReportKey(w.service.Name, w.reportName, now)
		logger.Info().Str("bucket", w.bucket).Str("key", key).Int("size", len(reportBytes)).Msg("saving report to s3")
		_, err = w.s3.PutObjectWithContext(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(w.bucket),
			Body:        bytes.NewReader(reportBytes),
			Key:         aws.String(key),
			ContentType: aws.String("application/json"),
		})
		if err != nil {
			return fmt.Errorf("failed to save report %v: %w", key, err)
		}

	case w.outFile != "":
		if err := os.MkdirAll(path.Dir(w.outFile), 0755); err != nil {
			return err
		}
		logger.Info().Str("filename", w.outFile).Int("size", len(reportBytes)).Msg("saving report locally")
		if err := os.WriteFile(w.outFile, reportBytes, 0644); err != nil {
			return fmt.Errorf("failed to save report %v: %w", w.outFile, err)
		}

	default:
		enc := json.NewEncoder(w.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	}
	return nil
}

// GetRawAsOf returns the most recent report written on the day of timestamp,
// walking back one day at a time for up to a week.
func GetRawAsOf(ctx context.Context, s3Api s3iface.S3API, bucket, servicename, reportName string, timestamp time.Time) ([]byte, string, error) {
	count := 0
	for {
		prefix := fmt.Sprintf("%v/%v/%v", servicename, reportName, timestamp.Format("2006-01-02"))
		listOutput, err := s3Api.ListObjectsV2WithContext(ctx, &s3.ListObjectsV2Input{
			Bucket:  aws.String(bucket),
			MaxKeys: aws.Int64(1000),
			Prefix:  aws.String(prefix),
		})
		if err != nil {
			return nil, "", fmt.Errorf("failed to read most recent %v report: failed to list objects: %w", reportName, err)
		}

		if len(listOutput.Contents) == 0 {
			if count > 5 {
				return nil, "", fmt.Errorf("failed to find latest %v report after 5 days: %v", reportName, timestamp)
			}
			yesterday := timestamp.AddDate(0, 0, -1)
			timestamp = time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), 23, 59, 59, 0, time.UTC)
			count += 1
			continue
		}

		sort.Slice(listOutput.Contents, func(i, j int) bool {
			return aws.StringValue(listOutput.Contents[i].Key) > aws.StringValue(listOutput.Contents[j].Key)
		})
		firstKey := listOutput.Contents[0].Key

		output, err := s3Api.GetObjectWithContext(ctx, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    firstKey,
		})
		if err != nil {
			return nil, "", fmt.Errorf("failed to read most recent file in %v: failed to get object, %v: %w", prefix, aws.StringValue(firstKey), err)
		}
		defer output.Body.Close()

		raw, err := io.ReadAll(output.Body)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read most recent file in %v: failed to read s3 response, %v: %w", prefix, aws.StringValue(firstKey), err)
		}
		return raw, aws.StringValue(firstKey), nil
	}
}

// PrintLatest writes the most recent report in the bucket to out, indented.
func PrintLatest(ctx context.Context, s3Api s3iface.S3API, bucket, serviceName, reportName string, out io.Writer) (string, error) {
	raw, key, err := GetRawAsOf(ctx, s3Api, bucket, serviceName, reportName, time.Now().UTC())
	if err != nil {
		return "", err
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return "", fmt.Errorf("failed to format report %v: %w", key, err)
	}
	pretty.WriteByte('\n')
	if _, err := out.Write(pretty.Bytes()); err != nil {
		return "", err
	}
	return key, nil
}
