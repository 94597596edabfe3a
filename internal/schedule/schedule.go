package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	smtypes "github.com/aws/aws-sdk-go-v2/service/sagemaker/types"

	monerrors "github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/errors"
	"github.com/cloudacademy/sagemaker-data-quality-monitoring/pkg/types"
)

// API is the subset of the SageMaker control-plane client used for
// monitoring schedules.
type API interface {
	CreateMonitoringSchedule(ctx context.Context, params *sagemaker.CreateMonitoringScheduleInput,
		optFns ...func(*sagemaker.Options)) (*sagemaker.CreateMonitoringScheduleOutput, error)
	DescribeMonitoringSchedule(ctx context.Context, params *sagemaker.DescribeMonitoringScheduleInput,
		optFns ...func(*sagemaker.Options)) (*sagemaker.DescribeMonitoringScheduleOutput, error)
	DeleteMonitoringSchedule(ctx context.Context, params *sagemaker.DeleteMonitoringScheduleInput,
		optFns ...func(*sagemaker.Options)) (*sagemaker.DeleteMonitoringScheduleOutput, error)
	ListMonitoringExecutions(ctx context.Context, params *sagemaker.ListMonitoringExecutionsInput,
		optFns ...func(*sagemaker.Options)) (*sagemaker.ListMonitoringExecutionsOutput, error)
}

// Spec describes a data-quality monitoring schedule to create.
type Spec struct {
	// Name is the monitoring schedule name.
	Name string

	// EndpointName is the endpoint whose captured data is monitored.
	EndpointName string

	// Cron is the SageMaker cron expression.
	Cron string

	// Statistics and Constraints locate the baseline documents.
	Statistics  types.S3URI
	Constraints types.S3URI

	// Output is the S3 prefix monitoring reports are written to.
	Output types.S3URI

	// RoleArn is the IAM role the monitoring job assumes.
	RoleArn string

	// ImageURI is the analyzer image; empty resolves by region.
	ImageURI string

	// Region resolves the analyzer image when ImageURI is empty.
	Region string

	// InstanceType, InstanceCount, VolumeSizeGB size the processing cluster.
	InstanceType  string
	InstanceCount int32
	VolumeSizeGB  int32

	// MaxRuntime bounds one monitoring job execution.
	MaxRuntime time.Duration
}

// Validate checks the schedule definition before any API call is made.
func (s *Spec) Validate() error {
	if err := ValidateName(s.Name); err != nil {
		return err
	}
	if err := ValidateCron(s.Cron); err != nil {
		return err
	}
	if s.EndpointName == "" {
		return monerrors.NewScheduleError(monerrors.CodeInvalidName,
			"endpoint name is required", nil)
	}
	if s.Statistics.IsZero() || s.Constraints.IsZero() {
		return monerrors.NewScheduleError(monerrors.CodeCreateFailed,
			"baseline statistics and constraints locations are required", nil)
	}
	if s.Output.IsZero() {
		return monerrors.NewScheduleError(monerrors.CodeCreateFailed,
			"output location is required", nil)
	}
	if s.RoleArn == "" {
		return monerrors.NewScheduleError(monerrors.CodeCreateFailed,
			"role ARN is required", nil)
	}
	return nil
}

// Status summarizes a monitoring schedule.
type Status struct {
	Name          string
	ARN           string
	State         string
	Cron          string
	EndpointName  string
	CreatedAt     time.Time
	FailureReason string
}

// Execution summarizes one monitoring job execution.
type Execution struct {
	ScheduledAt   time.Time
	Status        string
	ProcessingJob string
	FailureReason string
}

// Manager creates and inspects monitoring schedules.
type Manager struct {
	api API
}

// NewManager creates a manager over the given API client.
func NewManager(api API) *Manager {
	return &Manager{api: api}
}

// Paths the analyzer container reads its inputs from and writes results to.
const (
	containerInputPath  = "/opt/ml/processing/input/endpoint"
	containerOutputPath = "/opt/ml/processing/output"
)

// Create registers a data-quality monitoring schedule. The managed service
// owns the schedule's lifecycle from here: execution, evaluation, and
// report publication all happen service-side.
func (m *Manager) Create(ctx context.Context, spec Spec) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	imageURI := spec.ImageURI
	if imageURI == "" {
		var err error
		imageURI, err = AnalyzerImageURI(spec.Region)
		if err != nil {
			return err
		}
	}

	maxRuntime := int32(spec.MaxRuntime / time.Second)
	if maxRuntime <= 0 {
		maxRuntime = 3600
	}

	input := &sagemaker.CreateMonitoringScheduleInput{
		MonitoringScheduleName: aws.String(spec.Name),
		MonitoringScheduleConfig: &smtypes.MonitoringScheduleConfig{
			MonitoringType: smtypes.MonitoringTypeDataQuality,
			ScheduleConfig: &smtypes.ScheduleConfig{
				ScheduleExpression: aws.String(spec.Cron),
			},
			MonitoringJobDefinition: &smtypes.MonitoringJobDefinition{
				BaselineConfig: &smtypes.MonitoringBaselineConfig{
					StatisticsResource: &smtypes.MonitoringStatisticsResource{
						S3Uri: aws.String(spec.Statistics.String()),
					},
					ConstraintsResource: &smtypes.MonitoringConstraintsResource{
						S3Uri: aws.String(spec.Constraints.String()),
					},
				},
				MonitoringInputs: []smtypes.MonitoringInput{
					{
						EndpointInput: &smtypes.EndpointInput{
							EndpointName: aws.String(spec.EndpointName),
							LocalPath:    aws.String(containerInputPath),
						},
					},
				},
				MonitoringOutputConfig: &smtypes.MonitoringOutputConfig{
					MonitoringOutputs: []smtypes.MonitoringOutput{
						{
							S3Output: &smtypes.MonitoringS3Output{
								S3Uri:     aws.String(spec.Output.String()),
								LocalPath: aws.String(containerOutputPath),
							},
						},
					},
				},
				MonitoringResources: &smtypes.MonitoringResources{
					ClusterConfig: &smtypes.MonitoringClusterConfig{
						InstanceCount:  aws.Int32(spec.InstanceCount),
						InstanceType:   smtypes.ProcessingInstanceType(spec.InstanceType),
						VolumeSizeInGB: aws.Int32(spec.VolumeSizeGB),
					},
				},
				MonitoringAppSpecification: &smtypes.MonitoringAppSpecification{
					ImageUri: aws.String(imageURI),
				},
				StoppingCondition: &smtypes.MonitoringStoppingCondition{
					MaxRuntimeInSeconds: aws.Int32(maxRuntime),
				},
				Environment: map[string]string{
					"dataset_format":             `{"sagemakerCaptureJson":{"captureIndexNames":["endpointInput","endpointOutput"]}}`,
					"output_path":                containerOutputPath,
					"publish_cloudwatch_metrics": "Enabled",
				},
				RoleArn: aws.String(spec.RoleArn),
			},
		},
	}

	if _, err := m.api.CreateMonitoringSchedule(ctx, input); err != nil {
		return monerrors.NewScheduleError(monerrors.CodeCreateFailed,
			fmt.Sprintf("failed to create monitoring schedule %s", spec.Name), err)
	}
	return nil
}

// Describe fetches the status of a monitoring schedule.
func (m *Manager) Describe(ctx context.Context, name string) (*Status, error) {
	out, err := m.api.DescribeMonitoringSchedule(ctx, &sagemaker.DescribeMonitoringScheduleInput{
		MonitoringScheduleName: aws.String(name),
	})
	if err != nil {
		return nil, monerrors.NewScheduleError(monerrors.CodeDescribeFailed,
			fmt.Sprintf("failed to describe monitoring schedule %s", name), err)
	}

	status := &Status{
		Name:          aws.ToString(out.MonitoringScheduleName),
		ARN:           aws.ToString(out.MonitoringScheduleArn),
		State:         string(out.MonitoringScheduleStatus),
		CreatedAt:     aws.ToTime(out.CreationTime),
		FailureReason: aws.ToString(out.FailureReason),
		EndpointName:  aws.ToString(out.EndpointName),
	}
	if cfg := out.MonitoringScheduleConfig; cfg != nil && cfg.ScheduleConfig != nil {
		status.Cron = aws.ToString(cfg.ScheduleConfig.ScheduleExpression)
	}
	return status, nil
}

// Delete removes a monitoring schedule.
func (m *Manager) Delete(ctx context.Context, name string) error {
	if _, err := m.api.DeleteMonitoringSchedule(ctx, &sagemaker.DeleteMonitoringScheduleInput{
		MonitoringScheduleName: aws.String(name),
	}); err != nil {
		return monerrors.NewScheduleError(monerrors.CodeDeleteFailed,
			fmt.Sprintf("failed to delete monitoring schedule %s", name), err)
	}
	return nil
}

// ListExecutions returns the most recent executions, newest first.
func (m *Manager) ListExecutions(ctx context.Context, name string, limit int32) ([]Execution, error) {
	out, err := m.api.ListMonitoringExecutions(ctx, &sagemaker.ListMonitoringExecutionsInput{
		MonitoringScheduleName: aws.String(name),
		SortBy:                 smtypes.MonitoringExecutionSortKeyScheduledTime,
		SortOrder:              smtypes.SortOrderDescending,
		MaxResults:             aws.Int32(limit),
	})
	if err != nil {
		return nil, monerrors.NewScheduleError(monerrors.CodeListFailed,
			fmt.Sprintf("failed to list executions for schedule %s", name), err)
	}

	executions := make([]Execution, 0, len(out.MonitoringExecutionSummaries))
	for _, s := range out.MonitoringExecutionSummaries {
		executions = append(executions, Execution{
			ScheduledAt:   aws.ToTime(s.ScheduledTime),
			Status:        string(s.MonitoringExecutionStatus),
			ProcessingJob: aws.ToString(s.ProcessingJobArn),
			FailureReason: aws.ToString(s.FailureReason),
		})
	}
	return executions, nil
}
