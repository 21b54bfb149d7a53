// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package awssdk builds the shared AWS SDK configuration and holds helpers common to every AWS capability.
package awssdk

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/smithy-go"
	"github.com/aws/smithy-go/logging"
	"github.com/sageturner/sageturner/internal"
)

// ConfigOptions controls how the shared AWS configuration is loaded.
type ConfigOptions struct {
	// Region overrides the region resolved from the environment and shared config files.
	Region string
	// Debug routes SDK request, response and retry logs to the standard logger.
	Debug bool
	// AppID is appended to the user agent of every request.
	AppID string
}

// NewConfig loads the default AWS credential and region chain. A region is required.
func NewConfig(ctx context.Context, options ConfigOptions) (aws.Config, error) {
	loadOptions := []func(*awsconfig.LoadOptions) error{}

	if options.Region != "" {
		loadOptions = append(loadOptions, awsconfig.WithRegion(options.Region))
	}

	if options.AppID != "" {
		loadOptions = append(loadOptions, awsconfig.WithAppID(options.AppID))
	}

	if options.Debug {
		loadOptions = append(loadOptions,
			awsconfig.WithLogger(logging.LoggerFunc(func(classification logging.Classification, format string, v ...any) {
				log.Printf("aws %s: %s\n", classification, fmt.Sprintf(format, v...))
			})),
			awsconfig.WithClientLogMode(aws.LogRequest|aws.LogResponse|aws.LogRetries),
		)
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return aws.Config{}, &internal.ErrorWithSuggestion{
			Err:        fmt.Errorf("loading AWS configuration: %w", err),
			Suggestion: "Suggestion: check your AWS profile and credentials, for example with 'aws sts get-caller-identity'.",
		}
	}

	if cfg.Region == "" {
		return aws.Config{}, &internal.ErrorWithSuggestion{
			Err: errors.New("no AWS region configured"),
			Suggestion: "Suggestion: pass --region, set AWS_REGION, or run " +
				"'sageturner config set defaults.region <region>'.",
		}
	}

	log.Printf("using AWS region %s", cfg.Region)
	return cfg, nil
}

// ErrorCode returns the service error code carried by err, or "" when err is not an API error.
func ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}

	return ""
}

// IsErrorCode reports whether err is an API error with one of the given service error codes.
func IsErrorCode(err error, codes ...string) bool {
	code := ErrorCode(err)
	if code == "" {
		return false
	}

	for _, c := range codes {
		if code == c {
			return true
		}
	}

	return false
}
