// Package schema reads a declarative data-model description and indexes its
// models, fields and enums.
//
// The source syntax is block based:
//
//	enum LeaveType {
//	  ANNUAL
//	  SICK
//	}
//
//	model User {
//	  id        String   @id
//	  email     String   @map("user_email")
//	  createdAt DateTime
//	  contracts Contract[]
//	  @@map("users")
//	}
//
// Scanning is line oriented rather than a full grammar. A Catalog is
// immutable once built. The Introspector owns the current catalog and swaps
// it only on an explicit Reload; there is no file watching.
package schema
