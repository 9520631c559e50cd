// Package messaging provides a broker-agnostic API for publishing messages.
//
// Business code depends on Publisher only, so the broker (Kafka, NATS, NSQ,
// Google Pub/Sub) is a deployment choice made through New.
package messaging
