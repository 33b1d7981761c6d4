// Package main is the entry point for gatesdb.
//
//	@title			gatesdb - Reference Database API
//	@version		1.0
//	@description	Read-only API over localized Human Design reference databases.
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@BasePath		/
package main

func main() {
	Execute()
}
