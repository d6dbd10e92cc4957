package contracts

import "github.com/ethereum/go-ethereum/common"

// FundMeBytecode is the creation code of FundMe. The constructor stores the
// price feed and writes msg.sender into every owner slot of the runtime code.
var FundMeBytecode = common.FromHex("0x346100555761053b381061005557602061051b60003960005173ffffffffffffffffffffffffffffffffffffffff166002556104c161005a6000393361010d523361018d52336102705233610322526104c16000f35b600080fd600436106100755760003560e01c8063b60d4288146100755780633ccfd60b14610106578063be2693f014610186578063d7b4750c146102985780630343fb25146102de578063893d20e81461031b5780639e87a5cd1461034a5780630d8e6e2c1461035b5780636b69a5921461039157610075565b63feaf968c60e01b60005260a06080600460006002545afa156104b25760a03d106104bc5760a0516402540be400023402670de0b6b3a764000090046802b5e3af16b188000090106103d3573360005260006020526040600020805434019055600154806001016001557fb10e2d527612073b26eecdfd717e6a320cf44b4afac2b0732d9fcbe2b7fa0cf601339055005b346104bc577f00000000000000000000000000000000000000000000000000000000000000003314156103a95760005b60015481101561017d57807fb10e2d527612073b26eecdfd717e6a320cf44b4afac2b0732d9fcbe2b7fa0cf601546000526000602052604060002060009055600101610136565b50600154610228565b346104bc577f00000000000000000000000000000000000000000000000000000000000000003314156103a95760015460005b818110156101f557807fb10e2d527612073b26eecdfd717e6a320cf44b4afac2b0732d9fcbe2b7fa0cf601548160051b608001526001016101b9565b5060005b81811015610222578060051b6080015160005260006020526040600020600090556001016101f9565b50610228565b60005b81811015610261576000817fb10e2d527612073b26eecdfd717e6a320cf44b4afac2b0732d9fcbe2b7fa0cf6015560010161022b565b505060006001556000808080477f00000000000000000000000000000000000000000000000000000000000000005af11561042b57005b346104bc57602436106104bc57600435600154811015610483577fb10e2d527612073b26eecdfd717e6a320cf44b4afac2b0732d9fcbe2b7fa0cf6015460005260206000f35b346104bc57602436106104bc5760043573ffffffffffffffffffffffffffffffffffffffff16600052600060205260406000205460005260206000f35b346104bc577f000000000000000000000000000000000000000000000000000000000000000060005260206000f35b346104bc5760025460005260206000f35b346104bc576354fd4d5060e01b60005260206080600460006002545afa156104b25760203d106104bc5760805160005260206000f35b346104bc576802b5e3af16b188000060005260206000f35b7f579610db0000000000000000000000000000000000000000000000000000000060005260046000fd5b7f08c379a0000000000000000000000000000000000000000000000000000000006000526020600452601b6024527f596f75206e65656420746f207370656e64206d6f72652045544821000000000060445260646000fd5b7f08c379a0000000000000000000000000000000000000000000000000000000006000526020600452600b6024527f43616c6c206661696c656400000000000000000000000000000000000000000060445260646000fd5b7f4e487b7100000000000000000000000000000000000000000000000000000000600052603260045260246000fd5b3d6000803e3d6000fd5b600080fd")

// FundMeDeployedBytecode is the FundMe runtime code with the owner slots zeroed.
var FundMeDeployedBytecode = common.FromHex("0x600436106100755760003560e01c8063b60d4288146100755780633ccfd60b14610106578063be2693f014610186578063d7b4750c146102985780630343fb25146102de578063893d20e81461031b5780639e87a5cd1461034a5780630d8e6e2c1461035b5780636b69a5921461039157610075565b63feaf968c60e01b60005260a06080600460006002545afa156104b25760a03d106104bc5760a0516402540be400023402670de0b6b3a764000090046802b5e3af16b188000090106103d3573360005260006020526040600020805434019055600154806001016001557fb10e2d527612073b26eecdfd717e6a320cf44b4afac2b0732d9fcbe2b7fa0cf601339055005b346104bc577f00000000000000000000000000000000000000000000000000000000000000003314156103a95760005b60015481101561017d57807fb10e2d527612073b26eecdfd717e6a320cf44b4afac2b0732d9fcbe2b7fa0cf601546000526000602052604060002060009055600101610136565b50600154610228565b346104bc577f00000000000000000000000000000000000000000000000000000000000000003314156103a95760015460005b818110156101f557807fb10e2d527612073b26eecdfd717e6a320cf44b4afac2b0732d9fcbe2b7fa0cf601548160051b608001526001016101b9565b5060005b81811015610222578060051b6080015160005260006020526040600020600090556001016101f9565b50610228565b60005b81811015610261576000817fb10e2d527612073b26eecdfd717e6a320cf44b4afac2b0732d9fcbe2b7fa0cf6015560010161022b565b505060006001556000808080477f00000000000000000000000000000000000000000000000000000000000000005af11561042b57005b346104bc57602436106104bc57600435600154811015610483577fb10e2d527612073b26eecdfd717e6a320cf44b4afac2b0732d9fcbe2b7fa0cf6015460005260206000f35b346104bc57602436106104bc5760043573ffffffffffffffffffffffffffffffffffffffff16600052600060205260406000205460005260206000f35b346104bc577f000000000000000000000000000000000000000000000000000000000000000060005260206000f35b346104bc5760025460005260206000f35b346104bc576354fd4d5060e01b60005260206080600460006002545afa156104b25760203d106104bc5760805160005260206000f35b346104bc576802b5e3af16b188000060005260206000f35b7f579610db0000000000000000000000000000000000000000000000000000000060005260046000fd5b7f08c379a0000000000000000000000000000000000000000000000000000000006000526020600452601b6024527f596f75206e65656420746f207370656e64206d6f72652045544821000000000060445260646000fd5b7f08c379a0000000000000000000000000000000000000000000000000000000006000526020600452600b6024527f43616c6c206661696c656400000000000000000000000000000000000000000060445260646000fd5b7f4e487b7100000000000000000000000000000000000000000000000000000000600052603260045260246000fd5b3d6000803e3d6000fd5b600080fd")

// MockV3AggregatorBytecode is the creation code of MockV3Aggregator(uint8,int256).
var MockV3AggregatorBytecode = common.FromHex("0x346100735761032c38106100735760406102ec60003960005160ff166000556020518060015542600255600354600101806003559081600052600460205260406000205542816000526005602052604060002055429060005260066020526040600020556102746100786000396102746000f35b600080fd3461026f576004361061026f5760003560e01c8063313ce5671461009b5780637284e416146100aa57806354fd4d50146100de57806350d25bcd146100e95780638205bf6a146100f5578063668a0f0214610101578063b5ab58dc1461010d578063b633620c1461012f578063feaf968c146101515780639a6fc8f514610165578063a87a20ce146101c55780634aa2011f146102145761026f565b60005460ff1660005260206000f35b6020600052601f6020527f76302e362f74657374732f4d6f636b563341676772656761746f722e736f6c0060405260606000f35b600060005260206000f35b60015460005260206000f35b60025460005260206000f35b60035460005260206000f35b6024361061026f57600435600052600460205260406000205460005260206000f35b6024361061026f57600435600052600560205260406000205460005260206000f35b60035469ffffffffffffffffffff16610181565b6024361061026f5760043569ffffffffffffffffffff16610181565b80608052806101005280600052600460205260406000205460a05280600052600660205260406000205460c052600052600560205260406000205460e05260a06080f35b6024361061026f57600435806001554260025560035460010180600355908160005260046020526040600020554281600052600560205260406000205542906000526006602052604060002055005b6084361061026f5760043569ffffffffffffffffffff16806003556024358060015581600052600460205260406000205560443580600255816000526005602052604060002055606435906000526006602052604060002055005b600080fd")

// MockV3AggregatorDeployedBytecode is the MockV3Aggregator runtime code.
var MockV3AggregatorDeployedBytecode = common.FromHex("0x3461026f576004361061026f5760003560e01c8063313ce5671461009b5780637284e416146100aa57806354fd4d50146100de57806350d25bcd146100e95780638205bf6a146100f5578063668a0f0214610101578063b5ab58dc1461010d578063b633620c1461012f578063feaf968c146101515780639a6fc8f514610165578063a87a20ce146101c55780634aa2011f146102145761026f565b60005460ff1660005260206000f35b6020600052601f6020527f76302e362f74657374732f4d6f636b563341676772656761746f722e736f6c0060405260606000f35b600060005260206000f35b60015460005260206000f35b60025460005260206000f35b60035460005260206000f35b6024361061026f57600435600052600460205260406000205460005260206000f35b6024361061026f57600435600052600560205260406000205460005260206000f35b60035469ffffffffffffffffffff16610181565b6024361061026f5760043569ffffffffffffffffffff16610181565b80608052806101005280600052600460205260406000205460a05280600052600660205260406000205460c052600052600560205260406000205460e05260a06080f35b6024361061026f57600435806001554260025560035460010180600355908160005260046020526040600020554281600052600560205260406000205542906000526006602052604060002055005b6084361061026f5760043569ffffffffffffffffffff16806003556024358060015581600052600460205260406000205560443580600255816000526005602052604060002055606435906000526006602052604060002055005b600080fd")
