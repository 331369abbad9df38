// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package outfit

import "fmt"

// ImageFailurePolicy decides what a failed item image does to the
// enclosing create or update. Main image failures are always fatal.
type ImageFailurePolicy int

const (
	// ImageFailureSwallow logs and counts the failure; the item row stays
	// committed without an image and the saga continues.
	ImageFailureSwallow ImageFailurePolicy = iota

	// ImageFailureFatal fails the saga: create compensates by deleting the
	// parent, update returns the error with earlier writes left in place.
	ImageFailureFatal
)

func (p ImageFailurePolicy) String() string {
	switch p {
	case ImageFailureSwallow:
		return "swallow"
	case ImageFailureFatal:
		return "fatal"
	default:
		return fmt.Sprintf("ImageFailurePolicy(%d)", int(p))
	}
}

// ParseImageFailurePolicy maps a config value to a policy.
func ParseImageFailurePolicy(s string) (ImageFailurePolicy, error) {
	switch s {
	case "", "swallow":
		return ImageFailureSwallow, nil
	case "fatal":
		return ImageFailureFatal, nil
	default:
		return 0, fmt.Errorf("unknown image failure policy %q", s)
	}
}
