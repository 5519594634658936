// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package economics

//go:generate mockgen -destination=mock_deviation_test.go -package $GOPACKAGE . Deviation
