// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package chain

// votingABI is the subset of the PerfectVotingSystem contract ABI the
// server calls. The contract is deployed out of band; only these five
// functions are used here.
const votingABI = `[
  {
    "name": "createVotingSession",
    "type": "function",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "name", "type": "string"},
      {"name": "options", "type": "string[]"},
      {"name": "duration", "type": "uint256"}
    ],
    "outputs": []
  },
  {
    "name": "vote",
    "type": "function",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "sessionId", "type": "uint256"},
      {"name": "option", "type": "string"}
    ],
    "outputs": []
  },
  {
    "name": "releaseResults",
    "type": "function",
    "stateMutability": "nonpayable",
    "inputs": [{"name": "sessionId", "type": "uint256"}],
    "outputs": []
  },
  {
    "name": "isSessionActive",
    "type": "function",
    "stateMutability": "view",
    "inputs": [{"name": "sessionId", "type": "uint256"}],
    "outputs": [{"name": "", "type": "bool"}]
  },
  {
    "name": "getResults",
    "type": "function",
    "stateMutability": "view",
    "inputs": [{"name": "sessionId", "type": "uint256"}],
    "outputs": [
      {"name": "options", "type": "string[]"},
      {"name": "counts", "type": "uint256[]"}
    ]
  }
]`
