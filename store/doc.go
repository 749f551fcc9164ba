// Package store persists trained price models, one artifact per crop.
//
// Models are addressed by crop name. The name is normalised with Key, so
// "Sweet Corn" and "sweet corn" refer to the same artifact,
// "sarima_sweet_corn_model".
//
// Two backends are provided:
//   - FileStore writes <dir>/sarima_<key>_model.json
//   - RedisStore writes <prefix>:sarima_<key>_model
//
// Load returns an error matching ErrNotFound when nothing has been saved for
// the crop, and pricemodel.ErrCorruptArtifact when the stored bytes cannot be
// decoded.
package store
