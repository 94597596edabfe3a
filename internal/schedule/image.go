package schedule

import (
	"fmt"

	monerrors "github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/errors"
)

// analyzerAccounts maps region to the account hosting the
// sagemaker-model-monitor-analyzer image in that region's ECR.
var analyzerAccounts = map[string]string{
	"us-east-1":      "156813124566",
	"us-east-2":      "777275614652",
	"us-west-1":      "890145073186",
	"us-west-2":      "159807026194",
	"eu-west-1":      "468650794304",
	"eu-west-2":      "749857270468",
	"eu-central-1":   "048819808253",
	"ap-northeast-1": "574779866223",
	"ap-southeast-1": "245545462676",
	"ap-southeast-2": "563025443158",
	"ca-central-1":   "536280801234",
}

// AnalyzerImageURI resolves the model-monitor analyzer image for a region.
func AnalyzerImageURI(region string) (string, error) {
	account, ok := analyzerAccounts[region]
	if !ok {
		return "", monerrors.NewScheduleError(monerrors.CodeUnknownRegion,
			fmt.Sprintf("no analyzer image registered for region %s; set schedule.image_uri explicitly", region), nil)
	}
	return fmt.Sprintf("%s.dkr.ecr.%s.amazonaws.com/sagemaker-model-monitor-analyzer", account, region), nil
}
