package processor

// FreePlan is the only plan whose images get stamped.
const FreePlan = "free"

// ShouldWatermark reports whether images produced for planID carry the
// watermark. The compositor itself never consults the plan.
func ShouldWatermark(planID string) bool {
	return planID == FreePlan
}
