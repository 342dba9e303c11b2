package plans

import (
	"time"

	"github.com/google/uuid"
)

// timeNow and newPlanID are package-level variables for testability.
// Tests replace them to pin timestamps, filenames and IDs.
var (
	timeNow   = time.Now
	newPlanID = func() string { return "plan-" + uuid.NewString()[:8] }
)
