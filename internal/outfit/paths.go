// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package outfit

import (
	"fmt"

	"github.com/google/uuid"
)

// Blob layout. Every object of an aggregate lives under blobPrefix so
// deletion can remove them with one prefix sweep.
//
//	outfits/{outfitId}/{name}.jpg                 main image
//	outfits/{outfitId}/items/{itemId}-{name}.jpg  item image

func blobPrefix(outfitID uuid.UUID) string {
	return fmt.Sprintf("outfits/%s/", outfitID)
}

func mainImagePath(outfitID uuid.UUID, name string) string {
	return fmt.Sprintf("outfits/%s/%s.jpg", outfitID, name)
}

func itemImagePath(outfitID, itemID uuid.UUID, name string) string {
	return fmt.Sprintf("outfits/%s/items/%s-%s.jpg", outfitID, itemID, name)
}

// randomName is the default blob name generator. A fresh name per upload
// keeps re-uploads from colliding under overwrite=false.
func randomName() string {
	return uuid.NewString()
}
