package domain

const (
	DefaultBackendBaseURL             = "http://localhost:5001/dealmind/us-central1/api"
	DefaultPredictURL                 = "http://localhost:5000/predict"
	DefaultBackendTimeoutSeconds      = 10
	DefaultAffiliateTag               = "dealmind-20"
	DefaultDailyCallLimit             = 10
	DefaultSweepAfterDays             = 7
	DefaultUserID                     = "anonymous"
	DefaultObservabilityListenAddress = ""
	DefaultTrackingEmail              = "user@example.com"
	DefaultSearchResults              = 5
	DefaultHistoryDays                = 30
	DefaultMinDiscount                = 20
)
