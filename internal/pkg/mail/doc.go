// Package mail defines the contract for sending email and its drivers.
//
// Use cases depend on the Mail interface and the Message payload only. The
// concrete delivery mechanism (SMTP, the SendGrid API, or a log sink for
// local development) is chosen at startup through NewFromDriver.
package mail
