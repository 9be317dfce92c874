// Package cataloguetitle implements the Catalogue Title use case. Cataloguing is idempotent.
package cataloguetitle
