// Package main provides the entry point for the procurement request portal.
// It initializes and runs a web server using the Fiber framework that lets
// employees create and track procurement service requests through a REST API,
// the procurement team review and approve them, and admins manage user
// accounts. The application uses gorm for data persistence and mirrors
// read-only case records from Salesforce for display alongside internal
// requests.
package main
