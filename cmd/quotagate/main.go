// Package main is the entry point for quotagate.
//
//	@title						quotagate - Usage Quota Service
//	@version					1.0
//	@description				Usage quota and entitlement accounting for the meeting platform. Tracks per-account monthly consumption and answers allow/deny for billable actions.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@securityDefinitions.apikey	ServiceKey
//	@in							header
//	@name						X-Service-Key
//	@description				Shared service key presented by the platform backend
package main

import (
	_ "github.com/quotagate/quotagate/docs"
)

func main() {
	Execute()
}
