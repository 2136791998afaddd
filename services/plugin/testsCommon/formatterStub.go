package testsCommon

import "github.com/iulianpascalau/device-health-check/services/plugin/common"

// FormatterStub -
type FormatterStub struct {
	FormatHandler func(result *common.CheckResult) string
}

// Format -
func (stub *FormatterStub) Format(result *common.CheckResult) string {
	if stub.FormatHandler != nil {
		return stub.FormatHandler(result)
	}

	return result.Status.String()
}

// IsInterfaceNil -
func (stub *FormatterStub) IsInterfaceNil() bool {
	return stub == nil
}
