// Package services holds the business operations behind the HTTP handlers:
//   - StudentService: registration, edits, verification and lookups
//   - AdminService: batch promotion and cohort deletion
//   - AuthService: login and access tokens
//   - DocumentService: profile and ID card PDFs
//   - ExportService: spreadsheet exports
package services
