// Package scheduling groups a batch queue by changeover compatibility,
// costs the resulting cleaning plan and checks it against live production
// conditions.
//
// Grouping runs three independent greedy passes over the same sorted queue
// (same drug and density, same drug only, different drug). The passes do not
// partition the queue between them, so one batch can appear in several
// groups.
package scheduling
