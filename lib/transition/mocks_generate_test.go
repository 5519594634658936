// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package transition

//go:generate mockgen -destination=mock_adversary_test.go -package $GOPACKAGE . Adversary
