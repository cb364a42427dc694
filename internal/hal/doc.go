// Package hal defines the sensor intake capability contracts the guidance
// loop depends on (spec §4.B, §9: "the guidance loop depends only on the
// capability set, not the concrete producer"), plus the Bridge-backed
// implementations used in simulation mode and the file/synthetic
// implementations used by tests.
//
// # Extension point
//
// ImageSource and RadarSource are the only two seams a live-hardware
// producer would need to satisfy. This repo ships two concrete sources —
// the Bridge-backed implementation used against the Sim, and a
// file/synthetic one used by tests — but nothing else in the module
// assumes either is the only possible producer. A GStreamer-backed
// ImageSource (the natural next one, following stream-capture's RTSP
// pipeline) would implement this same interface and need no changes
// anywhere else in the guidance loop.
package hal
