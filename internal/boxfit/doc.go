// Package boxfit fits an axis-aligned bounding box to an observed 3D
// point cloud by importance sampling.
//
// Responsibilities: the generative model (uniform priors + isotropic
// Gaussian likelihood), the centroid-seeded proposal distribution, the
// weighted importance sampler, the box-to-wireframe mapping, and the
// Chamfer re-ranking of sampled hypotheses.
// Key types: BoxParams, Particle, RankedHypothesis.
//
// Data loading, persistence and presentation live outside this package;
// see cmd/boxfit, storage/sqlite and report.
// No SQL/database code is allowed in this package.
package boxfit
