package app

// defaults apply when a key is absent from the config file and the
// environment. modules.otp.* limits are also defaulted inside the usecase.
var defaults = map[string]any{
	"app.name":                                    "assetly",
	"app.tz":                                      "UTC",
	"app.shutdown_timeout_seconds":                10,
	"app.server.max_goroutine":                    256,
	"app.server.http.address":                     ":8080",
	"app.server.http.read_timeout_seconds":        10,
	"app.server.http.read_header_timeout_seconds": 5,
	"app.server.http.write_timeout_seconds":       15,
	"app.server.http.idle_timeout_seconds":        60,

	"instrument.service_name":            "assetly",
	"instrument.trace_sample_ratio":      1.0,
	"instrument.metric_interval_seconds": 15,
	"instrument.log_level":               "info",
	"instrument.log_mask_fields":         "password,new_password,confirm_password,otp,code,authorization",
	"instrument.log_http_bodies":         true,

	"database.migrate_on_start": true,

	"hash.otp.driver":  "bcrypt",
	"hash.bcrypt.cost": 10,

	"mail.driver": "log",

	"messaging.driver": "none",

	"modules.otp.enabled":                  true,
	"modules.otp.code_digits":              6,
	"modules.otp.ttl_minutes":              10,
	"modules.otp.rate_window_minutes":      60,
	"modules.otp.max_requests":             3,
	"modules.otp.max_attempts":             5,
	"modules.otp.reset_window_minutes":     5,
	"modules.otp.cleanup_retention_hours":  24,
	"modules.otp.cleanup_schedule":         "0 * * * *",
	"modules.otp.cleanup_dry_run":          false,
	"modules.otp.cleanup_lock_ttl_seconds": 300,
	"modules.otp.store_timeout_seconds":    5,
	"modules.otp.email_timeout_seconds":    15,
	"modules.otp.dev_log_code":             false,
}
