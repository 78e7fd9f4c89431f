// Package matching associates accounts with donor records and narrows
// directory snapshots by search criteria. Everything here is pure and
// works on a snapshot already fetched from the directory.
package matching

import (
	"strings"

	"blooddonor/pkg/types"
)

// MatchDonorByEmail returns the first donor whose email equals email exactly.
// Comparison is case-sensitive. When several records share the email the
// earliest in iteration order wins.
func MatchDonorByEmail(donors []*types.Donor, email string) (*types.Donor, bool) {
	if email == "" {
		return nil, false
	}

	for _, donor := range donors {
		if donor != nil && donor.Email == email {
			return donor, true
		}
	}

	return nil, false
}

// CountByEmail reports how many donors carry email.
func CountByEmail(donors []*types.Donor, email string) int {
	n := 0
	for _, donor := range donors {
		if donor != nil && donor.Email == email {
			n++
		}
	}
	return n
}

// FilterDonors keeps the donors that satisfy every set criterion, in input order.
func FilterDonors(donors []*types.Donor, criteria types.SearchCriteria) []*types.Donor {
	city := strings.ToLower(strings.TrimSpace(criteria.City))

	out := make([]*types.Donor, 0, len(donors))
	for _, donor := range donors {
		if donor == nil {
			continue
		}
		if criteria.BloodType != "" && donor.BloodType != criteria.BloodType {
			continue
		}
		if city != "" && (donor.City == "" || strings.ToLower(donor.City) != city) {
			continue
		}
		out = append(out, donor)
	}

	return out
}
