// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package query

import "fmt"

// BlastRadiusThresholds are the heuristic cutoffs used to grade Core Logic
// confidence by total affected vertex count. Surfaced as a struct rather
// than constants so a caller can tune them.
type BlastRadiusThresholds struct {
	HighMax   int // total <= HighMax -> High
	MediumMax int // total <= MediumMax -> Medium, else Low
}

// DefaultBlastRadiusThresholds matches the 5/20/50 cutoffs.
func DefaultBlastRadiusThresholds() BlastRadiusThresholds {
	return BlastRadiusThresholds{HighMax: 20, MediumMax: 50}
}

// Classify derives a role and confidence from an impact result's shape,
// without any further graph access.
func Classify(result ImpactResult, thresholds BlastRadiusThresholds) ConfidenceExplanation {
	up := len(result.Upstream)
	down := len(result.Downstream)

	switch {
	case up == 0 && down == 0:
		return ConfidenceExplanation{
			Role:       RoleIsolated,
			Confidence: ConfidenceLow,
			Reasons:    []string{"no callers and no callees found"},
		}

	case up == 0 && down > 0:
		confidence := ConfidenceHigh
		reasons := []string{fmt.Sprintf("no callers, %d callees", down)}
		if down > 5 {
			confidence = ConfidenceMedium
			reasons = append(reasons, "large downstream fan-out reduces confidence")
		}
		return ConfidenceExplanation{Role: RoleEntryPoint, Confidence: confidence, Reasons: reasons}

	case up > 0 && down == 0:
		return ConfidenceExplanation{
			Role:       RoleUtility,
			Confidence: ConfidenceHigh,
			Reasons:    []string{fmt.Sprintf("%d callers, no callees", up)},
		}

	case (up <= 2 && down > 5) || (up > 5 && down <= 2):
		return ConfidenceExplanation{
			Role:       RoleAdapter,
			Confidence: ConfidenceHigh,
			Reasons: []string{
				fmt.Sprintf("lopsided fan shape (%d upstream, %d downstream) matches an adapter pattern", up, down),
			},
		}

	default:
		total := up + down
		confidence := ConfidenceHigh
		switch {
		case total > thresholds.MediumMax:
			confidence = ConfidenceLow
		case total > thresholds.HighMax:
			confidence = ConfidenceMedium
		}
		reasons := []string{
			fmt.Sprintf("%d upstream, %d downstream, total affected %d", up, down, total),
		}
		if total > thresholds.MediumMax {
			reasons = append(reasons, "large blast radius detected")
		}
		return ConfidenceExplanation{Role: RoleCoreLogic, Confidence: confidence, Reasons: reasons}
	}
}
