package catalog

import (
	"testing"

	"genebank/testutil"
)

func TestCatalogHasNoTransportOrDriverImports(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".",
		testutil.Any(testutil.TransportImportForbidden, testutil.StorageDriverForbidden),
		"documents convert payloads and rows without knowing how they travel or persist")
}
