// Package catalog classifies SFG measurement files by role and resolves the
// background and reference file each signal file is processed against.
//
// Roles and metadata are inferred from the filename alone, using a
// declarative rule table ([DefaultRules]). The naming convention is
//
//	<name>_<pol>_<exposure>_<index>[_bg].csv
//
// for example
//
//	water_ssp_600s_01.csv      sample "water", ssp, 600 s, replicate 01
//	water_ssp_600s_01_bg.csv   background of the file above
//	zqz_ssp_60s_01.csv         z-cut quartz reference
//	cal_ppp_60s_01.csv         calibration measurement
//
// # Matching
//
// Every non-background entry is linked to exactly one background with the
// same name, polarization and exposure. When several backgrounds qualify, the
// one with the same replicate index wins; otherwise the highest index wins.
//
// Every sample is linked to exactly one reference. References are treated as
// polarization-independent: all references are candidates, ranked by matching
// polarization, then matching exposure, then highest index.
//
// [Build] is atomic: it returns either a fully linked catalog or an error.
package catalog
